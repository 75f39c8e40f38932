// Package tutor assembles the MCQ tutor server from its options.
package tutor

import (
	"time"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/redfire-io/pcb-tutor/pkg/app"
	"github.com/redfire-io/pcb-tutor/pkg/app/cliflag"
	cacheopts "github.com/redfire-io/pcb-tutor/pkg/options/cache"
	llmopts "github.com/redfire-io/pcb-tutor/pkg/options/llm"
	logopts "github.com/redfire-io/pcb-tutor/pkg/options/logger"
	mcqopts "github.com/redfire-io/pcb-tutor/pkg/options/mcq"
	milvusopts "github.com/redfire-io/pcb-tutor/pkg/options/milvus"
	httpopts "github.com/redfire-io/pcb-tutor/pkg/options/server/http"
)

var _ app.CliOptions = (*ServerOptions)(nil)

// ServerOptions is the full configuration of the tutor server.
type ServerOptions struct {
	HTTP      *httpopts.Options       `json:"http" mapstructure:"http"`
	Log       *logopts.Options        `json:"log" mapstructure:"log"`
	Milvus    *milvusopts.Options     `json:"milvus" mapstructure:"milvus"`
	MCQ       *mcqopts.Options        `json:"mcq" mapstructure:"mcq"`
	Cache     *cacheopts.Options      `json:"cache" mapstructure:"cache"`
	Embedding *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`
	Chat      *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewServerOptions creates ServerOptions with defaults.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTP:            httpopts.NewOptions(),
		Log:             logopts.NewOptions(),
		Milvus:          milvusopts.NewOptions(),
		MCQ:             mcqopts.NewOptions(),
		Cache:           cacheopts.NewOptions(),
		Embedding:       llmopts.NewEmbeddingOptions(),
		Chat:            llmopts.NewChatOptions(),
		ShutdownTimeout: 30 * time.Second,
	}
}

// Flags returns the flags grouped by functional area.
func (o *ServerOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}

	o.HTTP.AddFlags(fss.FlagSet("http"))
	o.Log.AddFlags(fss.FlagSet("log"))
	o.Milvus.AddFlags(fss.FlagSet("milvus"))
	o.MCQ.AddFlags(fss.FlagSet("mcq"))
	o.Cache.AddFlags(fss.FlagSet("cache"))
	o.Embedding.AddFlags(fss.FlagSet("embedding"), "embedding")
	o.Chat.AddFlags(fss.FlagSet("chat"), "chat")

	misc := fss.FlagSet("misc")
	misc.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Maximum time to wait for graceful shutdown.")

	return fss
}

// Complete fills in defaults that depend on other options.
func (o *ServerOptions) Complete() error {
	if err := o.MCQ.Complete(); err != nil {
		return err
	}
	if err := o.Cache.Complete(); err != nil {
		return err
	}
	return o.Log.Complete()
}

// Validate checks all option groups and aggregates their errors.
func (o *ServerOptions) Validate() error {
	var errs []error

	errs = append(errs, o.HTTP.Validate()...)
	errs = append(errs, o.MCQ.Validate()...)
	errs = append(errs, o.Cache.Validate()...)
	errs = append(errs, o.Embedding.Validate()...)
	errs = append(errs, o.Chat.Validate()...)
	if o.MCQ.Store == mcqopts.StoreMilvus {
		errs = append(errs, o.Milvus.Validate()...)
	}
	if err := o.Log.Validate(); err != nil {
		errs = append(errs, err)
	}

	return utilerrors.NewAggregate(errs)
}

// Config builds the runnable server configuration.
func (o *ServerOptions) Config() (*Config, error) {
	return &Config{Options: o}, nil
}

// Package main is the entry point for the pcb-tutor MCQ service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/redfire-io/pcb-tutor/internal/tutor"
)

func main() {
	tutor.NewApp().Run()
}

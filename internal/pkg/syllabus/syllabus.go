// Package syllabus holds the Class 12 PCB chapter catalogue and the keyword
// matcher that maps a topic plus retrieved context onto a chapter.
package syllabus

import (
	"strings"

	"github.com/redfire-io/pcb-tutor/internal/model"
	"github.com/redfire-io/pcb-tutor/internal/pkg/textutil"
)

// chapterNames lists the textbook chapters per subject, in textbook order.
var chapterNames = map[model.Subject][]string{
	model.SubjectBiology: {
		"Reproduction in Lower and Higher Plants",
		"Reproduction in Lower and Higher Animals",
		"Inheritance and Variation",
		"Molecular Basis of Inheritance",
		"Origin and Evolution of Life",
		"Plant Water Relation",
		"Plant Growth and Mineral Nutrition",
		"Respiration and Circulation",
		"Control and Co-ordination",
		"Human Health and Diseases",
		"Enhancement of Food Production",
		"Biotechnology",
		"Organisms and Populations",
		"Ecosystems and Energy Flow",
		"Biodiversity, Conservation and Environmental Issues",
	},
	model.SubjectChemistry: {
		"Solid State",
		"Solutions",
		"Ionic Equilibria",
		"Chemical Thermodynamics",
		"Electrochemistry",
		"Chemical Kinetics",
		"Elements of Groups 16, 17 and 18",
		"Transition and Inner transition Elements",
		"Coordination Compounds",
		"Halogen Derivatives",
		"Alcohols, Phenols and Ethers",
		"Aldehydes, Ketones and Carboxylic acids",
		"Amines",
		"Biomolecules",
		"Introduction to Polymer Chemistry",
		"Green Chemistry and Nanochemistry",
	},
	model.SubjectPhysics: {
		"Rotational Dynamics",
		"Mechanical Properties of Fluids",
		"Kinetic Theory of Gases and Radiation",
		"Thermodynamics",
		"Oscillations",
		"Superposition of Waves",
		"Wave Optics",
		"Electrostatics",
		"Current Electricity",
		"Magnetic Fields due to Electric Current",
		"Magnetic Materials",
		"Electromagnetic induction",
		"AC Circuits",
		"Dual Nature of Radiation and Matter",
		"Structure of Atoms and Nuclei",
		"Semiconductor Devices",
	},
}

// coverage summarizes each subject's syllabus for topic validation prompts.
var coverage = map[model.Subject]string{
	model.SubjectBiology:   "Reproduction, Genetics, Evolution, Plant Physiology, Human Systems, Ecology, Biotechnology",
	model.SubjectChemistry: "Solid State, Solutions, Thermodynamics, Electrochemistry, Organic Chemistry, Coordination Compounds",
	model.SubjectPhysics:   "Rotational Dynamics, Fluids, Thermodynamics, Waves, Optics, Electromagnetism, Modern Physics, Semiconductors",
}

// contextWindow caps how much retrieved context feeds the keyword matcher.
const contextWindow = 1000

// Chapters returns the chapter list for a subject. The returned slice must
// not be modified.
func Chapters(subject model.Subject) []string {
	return chapterNames[subject]
}

// Coverage returns a one-line summary of the subject's syllabus.
func Coverage(subject model.Subject) string {
	return coverage[subject]
}

// MatchChapter scores each chapter of the subject against the topic and the
// head of the retrieved context. Chapter words longer than three characters
// found in the combined text score one point each; topic words longer than
// three characters found in the chapter name score two. The highest scoring
// chapter wins, earlier chapters winning ties. score is 0 when nothing
// matched.
func MatchChapter(subject model.Subject, topic, context string) (chapter string, score int) {
	chapters := chapterNames[subject]
	if len(chapters) == 0 {
		return "", 0
	}

	context = textutil.TruncateString(context, contextWindow)
	combined := strings.ToLower(topic + " " + context)
	topicWords := strings.Fields(strings.ToLower(topic))

	best := ""
	bestScore := 0
	for _, ch := range chapters {
		chLower := strings.ToLower(ch)
		s := 0

		for _, word := range strings.Fields(chLower) {
			if len(word) > 3 && strings.Contains(combined, word) {
				s++
			}
		}

		for _, word := range topicWords {
			if len(word) > 3 && strings.Contains(chLower, word) {
				s += 2
			}
		}

		if s > bestScore {
			best = ch
			bestScore = s
		}
	}

	return best, bestScore
}

// Contains reports whether name matches a chapter of the subject, ignoring
// case and allowing either string to contain the other. It returns the
// canonical chapter name on a match.
func Contains(subject model.Subject, name string) (string, bool) {
	nameLower := strings.ToLower(strings.TrimSpace(name))
	if nameLower == "" {
		return "", false
	}
	for _, ch := range chapterNames[subject] {
		chLower := strings.ToLower(ch)
		if strings.Contains(chLower, nameLower) || strings.Contains(nameLower, chLower) {
			return ch, true
		}
	}
	return "", false
}

package services

import (
	"regexp"
	"strings"
)

const (
	TopicPhysics         = "physics"
	TopicChemistry       = "chemistry"
	TopicBiology         = "biology"
	TopicMathematics     = "mathematics"
	TopicComputerScience = "computer-science"
	TopicGeneral         = "general"
)

// Checked in order; the first topic with the most hits wins ties.
var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{TopicPhysics, []string{"force", "velocity", "acceleration", "momentum", "energy", "newton", "gravity", "friction", "current", "voltage", "resistance", "magnetic", "optics", "lens", "wave", "thermodynamics", "kinematics", "torque", "electric field", "projectile"}},
	{TopicChemistry, []string{"molecule", "atom", "reaction", "acid", "base", "bond", "mole", "oxidation", "reduction", "organic", "compound", "element", "periodic", "electron", "ph", "equilibrium", "catalyst", "isomer", "hybridization", "titration"}},
	{TopicBiology, []string{"cell", "dna", "rna", "gene", "protein", "enzyme", "photosynthesis", "respiration", "organism", "evolution", "plant", "animal", "tissue", "mitosis", "meiosis", "hormone", "ecology", "botany", "zoology", "chromosome"}},
	{TopicMathematics, []string{"equation", "integral", "derivative", "matrix", "probability", "algebra", "calculus", "geometry", "triangle", "theorem", "limit", "function", "vector", "polynomial", "trigonometry", "logarithm", "sin", "cos", "quadratic", "permutation"}},
	{TopicComputerScience, []string{"algorithm", "code", "program", "function call", "array", "loop", "recursion", "python", "java", "javascript", "database", "sql", "compiler", "pointer", "linked list", "stack", "queue", "binary tree", "complexity", "bug"}},
}

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

// ClassifyTopic buckets a question by keyword hits.
func ClassifyTopic(question string) string {
	text := strings.ToLower(question)
	words := map[string]bool{}
	for _, w := range wordRe.FindAllString(text, -1) {
		words[w] = true
	}
	padded := " " + strings.Join(wordRe.FindAllString(text, -1), " ") + " "

	best, bestHits := TopicGeneral, 0
	for _, tk := range topicKeywords {
		hits := 0
		for _, kw := range tk.keywords {
			if strings.Contains(kw, " ") {
				if strings.Contains(padded, " "+kw+" ") {
					hits++
				}
				continue
			}
			if words[kw] || words[kw+"s"] {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = tk.topic, hits
		}
	}
	return best
}

package terminal

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Language describes how to run one source file inside its temp dir.
type Language struct {
	Name string
	Ext  string
	// Binary is checked with exec.LookPath before a run.
	Binary string
	// DefaultFile is used when the client sends no usable filename.
	DefaultFile string
	// Command returns the sh -c script for file (a bare, safe file name).
	Command func(file string) string
}

var languages = map[string]Language{
	"python": {Name: "python", Ext: ".py", Binary: "python3", DefaultFile: "main.py",
		Command: func(f string) string { return "python3 -u " + f }},
	"javascript": {Name: "javascript", Ext: ".js", Binary: "node", DefaultFile: "main.js",
		Command: func(f string) string { return "node " + f }},
	"typescript": {Name: "typescript", Ext: ".ts", Binary: "npx", DefaultFile: "main.ts",
		Command: func(f string) string { return "npx --yes tsx " + f }},
	"java": {Name: "java", Ext: ".java", Binary: "javac", DefaultFile: "Main.java",
		Command: func(f string) string {
			return fmt.Sprintf("javac %s && java -cp . %s", f, strings.TrimSuffix(f, ".java"))
		}},
	"c": {Name: "c", Ext: ".c", Binary: "gcc", DefaultFile: "main.c",
		Command: func(f string) string { return "gcc " + f + " -o main.out -lm && ./main.out" }},
	"cpp": {Name: "cpp", Ext: ".cpp", Binary: "g++", DefaultFile: "main.cpp",
		Command: func(f string) string { return "g++ -std=c++17 " + f + " -o main.out && ./main.out" }},
	"go": {Name: "go", Ext: ".go", Binary: "go", DefaultFile: "main.go",
		Command: func(f string) string { return "go run " + f }},
	"rust": {Name: "rust", Ext: ".rs", Binary: "rustc", DefaultFile: "main.rs",
		Command: func(f string) string { return "rustc " + f + " -o main.out && ./main.out" }},
	"ruby": {Name: "ruby", Ext: ".rb", Binary: "ruby", DefaultFile: "main.rb",
		Command: func(f string) string { return "ruby " + f }},
	"php": {Name: "php", Ext: ".php", Binary: "php", DefaultFile: "main.php",
		Command: func(f string) string { return "php " + f }},
	"bash": {Name: "bash", Ext: ".sh", Binary: "bash", DefaultFile: "main.sh",
		Command: func(f string) string { return "bash " + f }},
}

var aliases = map[string]string{
	"py": "python", "python3": "python",
	"js": "javascript", "node": "javascript",
	"ts": "typescript",
	"c++": "cpp",
	"golang": "go",
	"rs": "rust",
	"rb": "ruby",
	"sh": "bash", "shell": "bash",
}

// LookupLanguage resolves a client language name or alias.
func LookupLanguage(name string) (Language, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[name]; ok {
		name = a
	}
	l, ok := languages[name]
	return l, ok
}

// Supported lists the language names in a stable order.
func Supported() []string {
	return []string{"python", "javascript", "typescript", "java", "c", "cpp", "go", "rust", "ruby", "php", "bash"}
}

var safeName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]{0,99}$`)

// sourceFile picks the on-disk name: the client's base name when it is safe
// and carries the language's extension, else the default.
func sourceFile(l Language, filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	if safeName.MatchString(base) && strings.EqualFold(filepath.Ext(base), l.Ext) {
		return strings.TrimSuffix(base, filepath.Ext(base)) + l.Ext
	}
	return l.DefaultFile
}

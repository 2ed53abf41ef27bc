package services

import (
	"path"
	"strings"
)

const defaultIdeLanguage = "javascript"

type ideLanguage struct {
	ext         string
	mainFile    string
	boilerplate string
}

var ideLanguages = map[string]ideLanguage{
	"javascript": {".js", "main.js", "// JavaScript\nconsole.log(\"Hello, World!\");\n"},
	"typescript": {".ts", "main.ts", "// TypeScript\nconst greeting: string = \"Hello, World!\";\nconsole.log(greeting);\n"},
	"python":     {".py", "main.py", "# Python\nprint(\"Hello, World!\")\n"},
	"java":       {".java", "Main.java", "public class Main {\n    public static void main(String[] args) {\n        System.out.println(\"Hello, World!\");\n    }\n}\n"},
	"c":          {".c", "main.c", "#include <stdio.h>\n\nint main(void) {\n    printf(\"Hello, World!\\n\");\n    return 0;\n}\n"},
	"cpp":        {".cpp", "main.cpp", "#include <iostream>\n\nint main() {\n    std::cout << \"Hello, World!\" << std::endl;\n    return 0;\n}\n"},
	"go":         {".go", "main.go", "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"Hello, World!\")\n}\n"},
	"rust":       {".rs", "main.rs", "fn main() {\n    println!(\"Hello, World!\");\n}\n"},
	"ruby":       {".rb", "main.rb", "# Ruby\nputs \"Hello, World!\"\n"},
	"php":        {".php", "main.php", "<?php\necho \"Hello, World!\\n\";\n"},
	"bash":       {".sh", "main.sh", "#!/bin/bash\necho \"Hello, World!\"\n"},
	"html":       {".html", "index.html", "<!DOCTYPE html>\n<html>\n<head>\n  <title>Hello</title>\n</head>\n<body>\n  <h1>Hello, World!</h1>\n</body>\n</html>\n"},
	"css":        {".css", "style.css", "body {\n  font-family: sans-serif;\n}\n"},
	"json":       {".json", "data.json", "{\n  \"hello\": \"world\"\n}\n"},
	"markdown":   {".md", "README.md", "# Hello, World!\n"},
	"plaintext":  {".txt", "notes.txt", ""},
}

var ideExtensions = func() map[string]string {
	out := make(map[string]string, len(ideLanguages)+4)
	for lang, l := range ideLanguages {
		out[l.ext] = lang
	}
	out[".jsx"] = "javascript"
	out[".tsx"] = "typescript"
	out[".cc"] = "cpp"
	out[".h"] = "c"
	return out
}()

func normalizeIdeLanguage(lang string) (string, bool) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	switch lang {
	case "js", "node":
		lang = "javascript"
	case "ts":
		lang = "typescript"
	case "py", "python3":
		lang = "python"
	case "c++":
		lang = "cpp"
	case "sh", "shell":
		lang = "bash"
	case "golang":
		lang = "go"
	case "text", "txt":
		lang = "plaintext"
	}
	_, ok := ideLanguages[lang]
	return lang, ok
}

// LanguageFromName maps a file name to a language by extension; unknown
// extensions are plaintext.
func LanguageFromName(name string) string {
	if lang, ok := ideExtensions[strings.ToLower(path.Ext(name))]; ok {
		return lang
	}
	return "plaintext"
}

func ExtensionFor(lang string) string {
	if l, ok := ideLanguages[lang]; ok {
		return l.ext
	}
	return ".txt"
}

func Boilerplate(lang string) string {
	return ideLanguages[lang].boilerplate
}

func mainFileFor(lang string) string {
	if l, ok := ideLanguages[lang]; ok {
		return l.mainFile
	}
	return "main.txt"
}

// withExtension swaps name's extension for lang's, or appends it when the
// name has none.
func withExtension(name, lang string) string {
	ext := path.Ext(name)
	if ext != "" && ext != name {
		name = strings.TrimSuffix(name, ext)
	}
	return name + ExtensionFor(lang)
}

func filePath(name string) string { return "/" + name }

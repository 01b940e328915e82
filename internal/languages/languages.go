// Package languages holds the fixed set of editor language identifiers and
// their starter templates.
package languages

// Default is the language assumed when none is set or recognized.
const Default = "javascript"

var templates = map[string]string{
	"javascript": "// Welcome to CodeCollab!\nconsole.log(\"Hello, World!\");",
	"typescript": "// Welcome to CodeCollab!\nconst message: string = \"Hello, World!\";\nconsole.log(message);",
	"python":     "# Welcome to CodeCollab!\nprint(\"Hello, World!\")",
	"java":       "// Welcome to CodeCollab!\npublic class Main {\n    public static void main(String[] args) {\n        System.out.println(\"Hello, World!\");\n    }\n}",
	"cpp":        "// Welcome to CodeCollab!\n#include <iostream>\n\nint main() {\n    std::cout << \"Hello, World!\" << std::endl;\n    return 0;\n}",
	"csharp":     "// Welcome to CodeCollab!\nusing System;\n\nclass Program {\n    static void Main() {\n        Console.WriteLine(\"Hello, World!\");\n    }\n}",
	"php":        "<?php\n// Welcome to CodeCollab!\necho \"Hello, World!\";",
	"go":         "// Welcome to CodeCollab!\npackage main\n\nimport \"fmt\"\n\nfunc main() {\n    fmt.Println(\"Hello, World!\")\n}",
	"rust":       "// Welcome to CodeCollab!\nfn main() {\n    println!(\"Hello, World!\");\n}",
	"html":       "<!-- Welcome to CodeCollab! -->\n<!DOCTYPE html>\n<html>\n<head>\n    <title>Hello World</title>\n</head>\n<body>\n    <h1>Hello, World!</h1>\n</body>\n</html>",
	"css":        "/* Welcome to CodeCollab! */\nbody {\n    font-family: Arial, sans-serif;\n    background-color: #f0f0f0;\n    margin: 0;\n    padding: 20px;\n}\n\nh1 {\n    color: #333;\n}",
	"json":       "{\n  \"message\": \"Hello, World!\",\n  \"welcome\": \"CodeCollab\",\n  \"version\": \"1.0.0\"\n}",
	"xml":        "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<!-- Welcome to CodeCollab! -->\n<root>\n    <message>Hello, World!</message>\n</root>",
	"markdown":   "# Welcome to CodeCollab!\n\n## Hello, World!\n\nThis is a **collaborative** markdown editor.\n\n- Real-time sync\n- Multiple users\n- Awesome features\n\n```javascript\nconsole.log(\"Happy coding!\");\n```",
	"sql":        "-- Welcome to CodeCollab!\nSELECT 'Hello, World!' AS message;\n\nCREATE TABLE users (\n    id INT PRIMARY KEY,\n    name VARCHAR(100),\n    email VARCHAR(100)\n);",
	"yaml":       "# Welcome to CodeCollab!\napp:\n  name: \"CodeCollab\"\n  version: \"1.0.0\"\n  features:\n    - real-time-sync\n    - multi-language\n    - collaborative-editing\n\nmessage: \"Hello, World!\"",
}

var ordered = []string{
	"javascript", "typescript", "python", "java", "cpp", "csharp", "php",
	"go", "rust", "html", "css", "json", "xml", "markdown", "sql", "yaml",
}

// Supported returns the identifier set in display order.
func Supported() []string {
	out := make([]string, len(ordered))
	copy(out, ordered)
	return out
}

// IsSupported reports whether id names a known language.
func IsSupported(id string) bool {
	_, ok := templates[id]
	return ok
}

// Normalize falls back to the default for unrecognized identifiers.
func Normalize(id string) string {
	if IsSupported(id) {
		return id
	}
	return Default
}

// Template returns the starter code for a language, falling back to the
// default language's template for unrecognized identifiers.
func Template(id string) string {
	if tpl, ok := templates[id]; ok {
		return tpl
	}
	return templates[Default]
}

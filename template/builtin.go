package template

// Builtins returns the template set compiled into the binary. These
// cover the common servers and work without network access; the remote
// catalog extends rather than replaces them.
func Builtins() []Template {
	return []Template{
		{
			Name:        "filesystem",
			Version:     "1.0.0",
			Description: "Read and write files in allowed directories",
			Author:      "mcpkit",
			Tags:        []string{"files", "storage"},
			Variables: map[string]Variable{
				"paths": {
					Type:        TypeArray,
					Description: "Directories the server may access",
					Required:    true,
				},
			},
			Config: Config{
				Command: "npx",
				Args:    []string{"-y", "@modelcontextprotocol/server-filesystem", "{{paths}}"},
			},
			Requirements: map[string]string{"node": ">=18"},
		},
		{
			Name:        "github",
			Version:     "1.0.0",
			Description: "Work with GitHub repositories, issues and pull requests",
			Author:      "mcpkit",
			Tags:        []string{"github", "development"},
			Variables: map[string]Variable{
				"token": {
					Type:        TypeString,
					Description: "GitHub personal access token",
					Required:    true,
					Validation:  `^(ghp_|github_pat_)`,
				},
			},
			Config: Config{
				Command: "npx",
				Args:    []string{"-y", "@modelcontextprotocol/server-github"},
				Env:     map[string]string{"GITHUB_PERSONAL_ACCESS_TOKEN": "{{token}}"},
			},
			Requirements:      map[string]string{"node": ">=18"},
			SetupInstructions: "Create a token at https://github.com/settings/tokens with repo scope.",
		},
		{
			Name:        "brave-search",
			Version:     "1.0.0",
			Description: "Web search through the Brave Search API",
			Author:      "mcpkit",
			Tags:        []string{"search", "web"},
			Variables: map[string]Variable{
				"api_key": {
					Type:        TypeString,
					Description: "Brave Search API key",
					Required:    true,
				},
			},
			Config: Config{
				Command: "npx",
				Args:    []string{"-y", "@modelcontextprotocol/server-brave-search"},
				Env:     map[string]string{"BRAVE_API_KEY": "{{api_key}}"},
			},
			Requirements: map[string]string{"node": ">=18"},
		},
		{
			Name:        "postgres",
			Version:     "1.0.0",
			Description: "Query PostgreSQL databases with schema inspection",
			Author:      "mcpkit",
			Tags:        []string{"database", "sql"},
			Variables: map[string]Variable{
				"connection_string": {
					Type:        TypeString,
					Description: "PostgreSQL connection string",
					Required:    true,
					Validation:  `^postgres(ql)?://`,
				},
			},
			Config: Config{
				Command: "npx",
				Args:    []string{"-y", "@modelcontextprotocol/server-postgres", "{{connection_string}}"},
			},
			Requirements: map[string]string{"node": ">=18"},
		},
		{
			Name:        "sqlite",
			Version:     "1.0.0",
			Description: "Query SQLite database files",
			Author:      "mcpkit",
			Tags:        []string{"database", "sql"},
			Variables: map[string]Variable{
				"db_path": {
					Type:        TypeString,
					Description: "Path to the SQLite database file",
					Required:    true,
				},
			},
			Config: Config{
				Command: "uvx",
				Args:    []string{"mcp-server-sqlite", "--db-path", "{{db_path}}"},
			},
			Requirements: map[string]string{"python": ">=3.10"},
		},
		{
			Name:        "fetch",
			Version:     "1.0.0",
			Description: "Fetch web pages and convert them for model consumption",
			Author:      "mcpkit",
			Tags:        []string{"web"},
			Config: Config{
				Command: "uvx",
				Args:    []string{"mcp-server-fetch"},
			},
			Requirements: map[string]string{"python": ">=3.10"},
		},
	}
}

// Builtin returns the named builtin template.
func Builtin(name string) (*Template, bool) {
	for _, t := range Builtins() {
		if t.Name == name {
			return &t, true
		}
	}
	return nil, false
}

// BuiltinCatalog indexes the builtin templates in catalog form so
// offline listing and search work the same way as with the remote
// catalog.
func BuiltinCatalog() *Catalog {
	cat := &Catalog{
		Version:   "builtin",
		Templates: make(map[string]CatalogEntry),
	}
	for _, t := range Builtins() {
		cat.Templates[t.Name] = CatalogEntry{
			Name:        t.Name,
			Version:     t.Version,
			Description: t.Description,
			Author:      t.Author,
			Tags:        t.Tags,
			Platforms:   t.Platforms,
			Category:    builtinCategory(t),
			Path:        "templates/" + t.Name + ".json",
		}
	}
	return cat
}

func builtinCategory(t Template) string {
	if len(t.Tags) == 0 {
		return ""
	}
	return t.Tags[0]
}

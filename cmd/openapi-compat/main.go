// Command openapi-compat fails when a revised swagger.yaml breaks clients of
// the base one.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type parameter struct {
	Name     string `yaml:"name"`
	In       string `yaml:"in"`
	Required bool   `yaml:"required"`
}

type operation struct {
	Parameters []parameter            `yaml:"parameters"`
	Responses  map[string]yaml.Node   `yaml:"responses"`
	Security   []map[string][]string `yaml:"security"`
}

type document struct {
	BasePath string                          `yaml:"basePath"`
	Paths    map[string]map[string]yaml.Node `yaml:"paths"`
}

// apiSpec maps path -> method -> operation.
type apiSpec map[string]map[string]operation

var methods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"patch": true, "head": true, "options": true,
}

func main() {
	basePath := flag.String("base", "", "base OpenAPI swagger.yaml path")
	revisionPath := flag.String("revision", "", "revision OpenAPI swagger.yaml path")
	flag.Parse()

	if strings.TrimSpace(*basePath) == "" || strings.TrimSpace(*revisionPath) == "" {
		fmt.Fprintln(os.Stderr, "usage: openapi-compat -base <path> -revision <path>")
		os.Exit(2)
	}

	base, err := loadFile(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base spec: %v\n", err)
		os.Exit(1)
	}
	revision, err := loadFile(*revisionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision spec: %v\n", err)
		os.Exit(1)
	}

	if issues := compare(base, revision); len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}

	fmt.Println("openapi compatibility check passed")
}

func loadFile(path string) (apiSpec, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(raw)
}

func parse(raw []byte) (apiSpec, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Paths == nil {
		return nil, fmt.Errorf("missing top-level paths field")
	}

	out := make(apiSpec, len(doc.Paths))
	for path, entries := range doc.Paths {
		ops := make(map[string]operation)
		for method, node := range entries {
			method = strings.ToLower(strings.TrimSpace(method))
			if !methods[method] {
				continue
			}
			var op operation
			if err := node.Decode(&op); err != nil {
				return nil, fmt.Errorf("%s %s: %w", strings.ToUpper(method), path, err)
			}
			ops[method] = op
		}
		if len(ops) > 0 {
			out[doc.BasePath+path] = ops
		}
	}
	return out, nil
}

func compare(base, revision apiSpec) []string {
	var issues []string

	for path, baseOps := range base {
		revOps, ok := revision[path]
		if !ok {
			issues = append(issues, fmt.Sprintf("removed path: %s", path))
			continue
		}

		for method, baseOp := range baseOps {
			revOp, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}
			issues = append(issues, compareOperation(strings.ToUpper(method)+" "+path, baseOp, revOp)...)
		}
	}

	sort.Strings(issues)
	return issues
}

func compareOperation(name string, base, revision operation) []string {
	var issues []string

	for code := range base.Responses {
		if _, ok := revision.Responses[code]; !ok {
			issues = append(issues, fmt.Sprintf("removed response code: %s -> %s", name, strings.ToUpper(code)))
		}
	}

	known := make(map[string]bool, len(base.Parameters))
	for _, p := range base.Parameters {
		known[p.In+":"+p.Name] = true
	}
	for _, p := range revision.Parameters {
		if p.Required && !known[p.In+":"+p.Name] {
			issues = append(issues, fmt.Sprintf("new required parameter: %s -> %s %s", name, p.In, p.Name))
		}
	}

	if len(base.Security) == 0 && len(revision.Security) > 0 {
		issues = append(issues, fmt.Sprintf("operation now requires auth: %s", name))
	}
	return issues
}

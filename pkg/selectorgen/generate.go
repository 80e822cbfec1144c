package selectorgen

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"sort"
)

const storeImport = "github.com/sakinah-dev/sakinah/pkg/store"

// Generate emits the selector code for specs as package pkg. The output is
// gofmt'd and depends only on its input.
func Generate(pkg string, specs []StructSpec) ([]byte, error) {
	if pkg == "" {
		return nil, fmt.Errorf("selectorgen: package name is required")
	}

	var buf bytes.Buffer
	buf.WriteString("// Code generated by sakinah gen selectors. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkg)

	buf.WriteString("import (\n")
	for _, imp := range collectImports(specs) {
		if imp.Name != "" {
			fmt.Fprintf(&buf, "\t%s %q\n", imp.Name, imp.Path)
		} else {
			fmt.Fprintf(&buf, "\t%q\n", imp.Path)
		}
	}
	buf.WriteString(")\n")

	for _, spec := range specs {
		writeStruct(&buf, spec)
	}

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("selectorgen: format output: %w", err)
	}
	return out, nil
}

func collectImports(specs []StructSpec) []Import {
	seen := map[string]Import{storeImport: {Path: storeImport}}
	for _, spec := range specs {
		for _, imp := range spec.Imports {
			seen[imp.Path] = imp
		}
	}
	imports := make([]Import, 0, len(seen))
	for _, imp := range seen {
		imports = append(imports, imp)
	}
	sort.Slice(imports, func(i, j int) bool { return imports[i].Path < imports[j].Path })
	return imports
}

func writeStruct(buf *bytes.Buffer, spec StructSpec) {
	sel := spec.Name + "Selectors"

	fmt.Fprintf(buf, "\n// %s holds a typed accessor for every field of %s.\n", sel, spec.Name)
	fmt.Fprintf(buf, "type %s struct {\n", sel)
	for _, f := range spec.Fields {
		fmt.Fprintf(buf, "\t%s store.Accessor[%s]\n", f.Name, f.Type)
	}
	buf.WriteString("}\n")

	fmt.Fprintf(buf, "\n// New%s binds the accessors of %s to s.\n", sel, sel)
	fmt.Fprintf(buf, "func New%s(s *store.Store[%s]) %s {\n", sel, spec.Name, sel)
	fmt.Fprintf(buf, "\treturn %s{\n", sel)
	for _, f := range spec.Fields {
		fmt.Fprintf(buf, "\t\t%s: store.Bind(s, %q, func(v %s) %s { return v.%s }),\n",
			f.Name, f.Name, spec.Name, f.Type, f.Name)
	}
	buf.WriteString("\t}\n}\n")
}

// Run scans dir for typeNames and writes the generated selectors to output.
func Run(dir string, typeNames []string, output string) error {
	specs, err := ScanAll(dir, typeNames...)
	if err != nil {
		return err
	}
	code, err := Generate(specs[0].Package, specs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, code, 0o644); err != nil {
		return fmt.Errorf("selectorgen: write %s: %w", output, err)
	}
	return nil
}

package selectorgen

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrTypeNotFound is returned when no struct with the requested name exists.
var ErrTypeNotFound = errors.New("selectorgen: struct type not found")

// FieldSpec is one exported field of a state struct.
type FieldSpec struct {
	// Name is the field name, which is also the store key.
	Name string

	// Type is the field's type expression as written in source.
	Type string
}

// Import is an import the field types depend on.
type Import struct {
	// Name is the local name when the import is renamed, otherwise empty.
	Name string
	Path string
}

// StructSpec describes a state struct.
type StructSpec struct {
	Package string
	Name    string
	Fields  []FieldSpec
	Imports []Import
}

// Scan parses path, a Go file or a package directory, and returns the
// exported fields of the struct named typeName.
func Scan(path, typeName string) (StructSpec, error) {
	specs, err := ScanAll(path, typeName)
	if err != nil {
		return StructSpec{}, err
	}
	return specs[0], nil
}

// ScanAll is like Scan for several types, returned in the order requested.
func ScanAll(path string, typeNames ...string) ([]StructSpec, error) {
	if len(typeNames) == 0 {
		return nil, fmt.Errorf("selectorgen: no type names given")
	}
	files, err := sourceFiles(path)
	if err != nil {
		return nil, err
	}

	found := make(map[string]StructSpec, len(typeNames))
	fset := token.NewFileSet()
	for _, file := range files {
		f, err := parser.ParseFile(fset, file, nil, parser.SkipObjectResolution)
		if err != nil {
			return nil, fmt.Errorf("selectorgen: parse %s: %w", file, err)
		}
		for _, name := range typeNames {
			if _, ok := found[name]; ok {
				continue
			}
			if spec, ok := scanFile(f, name); ok {
				found[name] = spec
			}
		}
	}

	specs := make([]StructSpec, 0, len(typeNames))
	for _, name := range typeNames {
		spec, ok := found[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s in %s", ErrTypeNotFound, name, path)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// sourceFiles lists the non-test, non-generated Go files at path.
func sourceFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("selectorgen: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("selectorgen: %w", err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") {
			continue
		}
		if strings.HasSuffix(name, "_test.go") || strings.HasSuffix(name, "_gen.go") {
			continue
		}
		files = append(files, filepath.Join(path, name))
	}
	sort.Strings(files)
	return files, nil
}

func scanFile(f *ast.File, typeName string) (StructSpec, bool) {
	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, s := range gen.Specs {
			ts := s.(*ast.TypeSpec)
			if ts.Name.Name != typeName || ts.TypeParams != nil {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}
			spec := StructSpec{
				Package: f.Name.Name,
				Name:    typeName,
				Fields:  structFields(st),
			}
			spec.Imports = usedImports(f, st)
			return spec, true
		}
	}
	return StructSpec{}, false
}

func structFields(st *ast.StructType) []FieldSpec {
	var fields []FieldSpec
	for _, f := range st.Fields.List {
		typ := types.ExprString(f.Type)
		if len(f.Names) == 0 {
			if name := embeddedName(f.Type); ast.IsExported(name) {
				fields = append(fields, FieldSpec{Name: name, Type: typ})
			}
			continue
		}
		for _, n := range f.Names {
			if n.IsExported() {
				fields = append(fields, FieldSpec{Name: n.Name, Type: typ})
			}
		}
	}
	return fields
}

// embeddedName is the implicit field name of an embedded type.
func embeddedName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return embeddedName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(t.X)
	case *ast.IndexListExpr:
		return embeddedName(t.X)
	}
	return ""
}

// usedImports returns the file imports referenced by exported field types.
func usedImports(f *ast.File, st *ast.StructType) []Import {
	used := map[string]bool{}
	for _, field := range st.Fields.List {
		if len(field.Names) > 0 && !anyExported(field.Names) {
			continue
		}
		ast.Inspect(field.Type, func(n ast.Node) bool {
			if sel, ok := n.(*ast.SelectorExpr); ok {
				if id, ok := sel.X.(*ast.Ident); ok {
					used[id.Name] = true
				}
			}
			return true
		})
	}

	var imports []Import
	for _, spec := range f.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		imp := Import{Path: path}
		local := packageName(path)
		if spec.Name != nil {
			imp.Name = spec.Name.Name
			local = spec.Name.Name
		}
		if used[local] {
			imports = append(imports, imp)
		}
	}
	return imports
}

// packageName guesses the package name an unnamed import binds: the last
// path element without a major-version suffix ("chi/v5", "yaml.v3") or a
// go- prefix and -go suffix.
func packageName(path string) string {
	elems := strings.Split(path, "/")
	name := elems[len(elems)-1]
	if isMajorVersion(name) && len(elems) > 1 {
		name = elems[len(elems)-2]
	}
	if i := strings.LastIndex(name, ".v"); i > 0 && isMajorVersion(name[i+1:]) {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")
	name = strings.TrimSuffix(name, "-go")
	return strings.NewReplacer("-", "", ".", "").Replace(name)
}

// isMajorVersion reports whether s is v followed by digits, as in "v2".
func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func anyExported(names []*ast.Ident) bool {
	for _, n := range names {
		if n.IsExported() {
			return true
		}
	}
	return false
}

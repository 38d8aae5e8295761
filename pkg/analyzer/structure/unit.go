package structure

import (
	"github.com/panbanda/ooscan/pkg/lexer"
	"github.com/panbanda/ooscan/pkg/models"
)

// FileModel is the per-file structural model: the declarations of one unit
// with their methods attached and profiled, plus the methods that belong to no
// declaration of the file.
type FileModel struct {
	Unit          *models.SourceUnit
	Declarations  []*models.TypeDeclaration
	Methods       []*models.MethodSpan
	FreeFunctions []*models.MethodSpan
}

// Build extracts the declarations of unit, attaches methods by owner name
// against the declarations of the same file (first occurrence wins) and
// profiles their field usage and calls.
func Build(unit *models.SourceUnit, methods []*models.MethodSpan) *FileModel {
	norm := lexer.Normalize(unit.Text)
	fm := &FileModel{
		Unit:         unit,
		Declarations: extract(unit, norm),
		Methods:      methods,
	}

	byName := make(map[string]*models.TypeDeclaration, len(fm.Declarations))
	for _, d := range fm.Declarations {
		if _, ok := byName[d.Name]; !ok {
			byName[d.Name] = d
		}
	}

	for _, m := range methods {
		if d, ok := byName[m.Owner]; ok && m.Owner != "" {
			d.Methods = append(d.Methods, m)
			continue
		}
		fm.FreeFunctions = append(fm.FreeFunctions, m)
	}

	normalized := models.NewSourceUnit(unit.Path, norm)
	for _, d := range fm.Declarations {
		for _, m := range d.Methods {
			text := normalized.Slice(m.StartLine, m.EndLine)
			m.FieldUsage = FieldUsage(text, d.Fields)
			m.Calls = CallTokens(text)
		}
	}
	return fm
}

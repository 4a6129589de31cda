package generator

import (
	"github.com/upb/llm-datagen/internal/localgen"
)

// class is the capability a field is resolved to. It is one of localClass,
// independentClass or coherentClass.
type class interface {
	isClass()
}

type localClass struct {
	generatorID string
	generator   localgen.Generator
}

type independentClass struct {
	groupKey string
}

type coherentClass struct{}

func (localClass) isClass()       {}
func (independentClass) isClass() {}
func (coherentClass) isClass()    {}

// plannedField is a field or question after classification
type plannedField struct {
	name     string
	typ      string
	options  localgen.Options
	question Question
	class    class
}

func classify(registry *localgen.Registry, typ string) class {
	if typ == CoherentMarker {
		return coherentClass{}
	}
	if g, ok := registry.Lookup(typ); ok {
		return localClass{generatorID: typ, generator: g}
	}
	return independentClass{groupKey: typ}
}

func planFields(registry *localgen.Registry, fields []Field) []plannedField {
	out := make([]plannedField, 0, len(fields))
	for _, f := range fields {
		out = append(out, plannedField{
			name:    f.Name,
			typ:     f.Type,
			options: localgen.Options(f.Options),
			class:   classify(registry, f.Type),
		})
	}
	return out
}

func planQuestions(registry *localgen.Registry, questions []Question) []plannedField {
	out := make([]plannedField, 0, len(questions))
	for _, q := range questions {
		out = append(out, plannedField{
			name:     q.Name,
			typ:      q.GeneratorType,
			options:  localgen.Options(q.Options),
			question: q,
			class:    classify(registry, q.GeneratorType),
		})
	}
	return out
}

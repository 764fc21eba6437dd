// Package tag parses the `anvil` struct tag used on property injection points.
//
//	Cache anvil.Property[*Cache] `anvil:""`                 // key is the field type
//	DB    anvil.Property[*DB]    `anvil:"db.primary"`       // string key
//	Mail  anvil.Property[Mailer] `anvil:"'mail sender',optional"`
package tag

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

const Name = "anvil"

const OptionOptional = "optional"

type Tag struct {
	Key     string   `parser:"(@Ident | @String)?"`
	Options []string `parser:"( ',' @Ident )*"`
}

func (t *Tag) Optional() bool {
	for _, opt := range t.Options {
		if opt == OptionOptional {
			return true
		}
	}
	return false
}

var parser = participle.MustBuild[Tag](
	participle.Lexer(
		lexer.MustSimple(
			[]lexer.SimpleRule{
				{Name: "String", Pattern: `'[^']*'`},
				{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.\-/:]*`},
				{Name: "Punct", Pattern: `,`},
				{Name: "Whitespace", Pattern: `\s+`},
			},
		),
	),
	participle.Map(
		func(t lexer.Token) (lexer.Token, error) {
			t.Value = t.Value[1 : len(t.Value)-1]
			return t, nil
		}, "String",
	),
	participle.Elide("Whitespace"),
)

// Parse reads a tag value. An empty value yields an empty Tag.
func Parse(value string) (*Tag, error) {
	if strings.TrimSpace(value) == "" {
		return &Tag{}, nil
	}

	t, err := parser.ParseString(Name, value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s tag %q: %w", Name, value, err)
	}

	for _, opt := range t.Options {
		if opt != OptionOptional {
			return nil, fmt.Errorf("invalid %s tag %q: unknown option %q", Name, value, opt)
		}
	}

	return t, nil
}

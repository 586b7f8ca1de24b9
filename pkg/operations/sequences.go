package operations

import (
	"fmt"

	"github.com/pseudomuto/pgmigrate/pkg/utils"
)

type (
	// SequenceOptions are the options shared by sequences and identity
	// columns.
	SequenceOptions struct {
		Type        string `yaml:"type,omitempty"`
		Increment   *int64 `yaml:"increment,omitempty"`
		MinValue    *int64 `yaml:"minValue,omitempty"`
		NoMinValue  bool   `yaml:"noMinValue,omitempty"`
		MaxValue    *int64 `yaml:"maxValue,omitempty"`
		NoMaxValue  bool   `yaml:"noMaxValue,omitempty"`
		Start       *int64 `yaml:"start,omitempty"`
		Cache       *int64 `yaml:"cache,omitempty"`
		Cycle       *bool  `yaml:"cycle,omitempty"`
		OwnedBy     string `yaml:"ownedBy,omitempty"`
		OwnedByNone bool   `yaml:"ownedByNone,omitempty"`
	}

	CreateSequenceArgs struct {
		Sequence        Name `yaml:"sequence"`
		Temporary       bool `yaml:"temporary,omitempty"`
		IfNotExists     bool `yaml:"ifNotExists,omitempty"`
		SequenceOptions `yaml:",inline"`
	}

	AlterSequenceArgs struct {
		Sequence        Name   `yaml:"sequence"`
		Restart         bool   `yaml:"restart,omitempty"`
		RestartWith     *int64 `yaml:"restartWith,omitempty"`
		SequenceOptions `yaml:",inline"`
	}

	DropSequenceArgs struct {
		Sequence Name `yaml:"sequence"`
		IfExists bool `yaml:"ifExists,omitempty"`
		Cascade  bool `yaml:"cascade,omitempty"`
	}

	RenameSequenceArgs struct {
		From Name `yaml:"from"`
		To   Name `yaml:"to"`
	}
)

func (o Options) sequenceOptions(s SequenceOptions) []string {
	var clauses []string
	if s.Type != "" {
		typ := s.Type
		if def, err := ApplyType(ColumnDefinition{Type: s.Type}, o.TypeShorthands); err == nil {
			typ = def.Type
		}
		clauses = append(clauses, "AS "+typ)
	}
	if s.Increment != nil {
		clauses = append(clauses, fmt.Sprintf("INCREMENT BY %d", *s.Increment))
	}
	if s.MinValue != nil {
		clauses = append(clauses, fmt.Sprintf("MINVALUE %d", *s.MinValue))
	} else if s.NoMinValue {
		clauses = append(clauses, "NO MINVALUE")
	}
	if s.MaxValue != nil {
		clauses = append(clauses, fmt.Sprintf("MAXVALUE %d", *s.MaxValue))
	} else if s.NoMaxValue {
		clauses = append(clauses, "NO MAXVALUE")
	}
	if s.Start != nil {
		clauses = append(clauses, fmt.Sprintf("START WITH %d", *s.Start))
	}
	if s.Cache != nil {
		clauses = append(clauses, fmt.Sprintf("CACHE %d", *s.Cache))
	}
	if s.Cycle != nil {
		if *s.Cycle {
			clauses = append(clauses, "CYCLE")
		} else {
			clauses = append(clauses, "NO CYCLE")
		}
	}
	if s.OwnedBy != "" {
		clauses = append(clauses, "OWNED BY "+s.OwnedBy)
	} else if s.OwnedByNone {
		clauses = append(clauses, "OWNED BY NONE")
	}

	return clauses
}

func withClauses(b *utils.SQLBuilder, clauses []string) string {
	if len(clauses) > 0 {
		b.Block(formatLines(clauses, "  ", ""))
	}

	return b.String()
}

// CreateSequence creates a sequence. Reversible.
func CreateSequence(o Options) Operation[CreateSequenceArgs] {
	return Operation[CreateSequenceArgs]{
		Name: "createSequence",
		Forward: func(a CreateSequenceArgs) ([]string, error) {
			kind := "SEQUENCE"
			if a.Temporary {
				kind = "TEMPORARY SEQUENCE"
			}

			b := utils.NewSQLBuilder().Create(kind).IfNotExists(a.IfNotExists).Raw(o.Literal(a.Sequence))
			return join(withClauses(b, o.sequenceOptions(a.SequenceOptions))), nil
		},
		Reverse: func(a CreateSequenceArgs) ([]string, error) {
			return DropSequence(o).Forward(DropSequenceArgs{Sequence: a.Sequence})
		},
	}
}

// AlterSequence changes sequence options.
func AlterSequence(o Options) Operation[AlterSequenceArgs] {
	return Operation[AlterSequenceArgs]{
		Name: "alterSequence",
		Forward: func(a AlterSequenceArgs) ([]string, error) {
			clauses := o.sequenceOptions(a.SequenceOptions)
			if a.RestartWith != nil {
				clauses = append(clauses, fmt.Sprintf("RESTART WITH %d", *a.RestartWith))
			} else if a.Restart {
				clauses = append(clauses, "RESTART")
			}

			return join(withClauses(utils.NewSQLBuilder().Alter("SEQUENCE").Raw(o.Literal(a.Sequence)), clauses)), nil
		},
	}
}

// DropSequence drops a sequence.
func DropSequence(o Options) Operation[DropSequenceArgs] {
	return Operation[DropSequenceArgs]{
		Name: "dropSequence",
		Forward: func(a DropSequenceArgs) ([]string, error) {
			return join(utils.NewSQLBuilder().
				Drop("SEQUENCE").
				IfExists(a.IfExists).
				Raw(o.Literal(a.Sequence)).
				Cascade(a.Cascade).
				String()), nil
		},
	}
}

// RenameSequence renames a sequence. Reversible.
func RenameSequence(o Options) Operation[RenameSequenceArgs] {
	forward := func(a RenameSequenceArgs) ([]string, error) {
		return join(utils.NewSQLBuilder().Alter("SEQUENCE").Raw(o.Literal(a.From)).RenameTo(o.Literal(a.To)).String()), nil
	}

	return Operation[RenameSequenceArgs]{
		Name:    "renameSequence",
		Forward: forward,
		Reverse: func(a RenameSequenceArgs) ([]string, error) {
			return forward(RenameSequenceArgs{From: a.To, To: a.From})
		},
	}
}

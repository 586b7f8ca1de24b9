package operations

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/utils"
)

type (
	CreateTriggerArgs struct {
		Table   Name   `yaml:"table"`
		Trigger string `yaml:"trigger"`

		// When is BEFORE, AFTER or INSTEAD OF. Constraint triggers are always
		// AFTER.
		When string `yaml:"when,omitempty"`

		// Operations are INSERT, UPDATE [OF ...], DELETE or TRUNCATE.
		Operations []string `yaml:"operations"`

		// Level is ROW or STATEMENT (default). INSTEAD OF triggers are always
		// ROW.
		Level             string `yaml:"level,omitempty"`
		Constraint        bool   `yaml:"constraint,omitempty"`
		Deferrable        bool   `yaml:"deferrable,omitempty"`
		InitiallyDeferred bool   `yaml:"initiallyDeferred,omitempty"`
		Condition         string `yaml:"condition,omitempty"`

		// Function is the trigger function. It defaults to the trigger name
		// when Definition is set.
		Function       *Name `yaml:"function,omitempty"`
		FunctionParams []any `yaml:"functionParams,omitempty"`

		// Definition, when set, creates the trigger function inline before the
		// trigger.
		Definition      string `yaml:"definition,omitempty"`
		FunctionOptions `yaml:",inline"`
	}

	DropTriggerArgs struct {
		Table    Name   `yaml:"table"`
		Trigger  string `yaml:"trigger"`
		IfExists bool   `yaml:"ifExists,omitempty"`
		Cascade  bool   `yaml:"cascade,omitempty"`
	}

	RenameTriggerArgs struct {
		Table Name   `yaml:"table"`
		From  string `yaml:"from"`
		To    string `yaml:"to"`
	}
)

var insteadOf = regexp.MustCompile(`(?i)instead\s+of`)

func (a CreateTriggerArgs) functionName() (Name, error) {
	if a.Function != nil {
		return *a.Function, nil
	}

	if a.Definition != "" {
		return Name{Schema: a.Table.Schema, Name: a.Trigger}, nil
	}

	return Name{}, errors.Errorf("can't determine function name for trigger %s", a.Trigger)
}

// CreateTrigger creates a trigger and, when a definition is given, its
// function. Reversible.
func CreateTrigger(o Options) Operation[CreateTriggerArgs] {
	return Operation[CreateTriggerArgs]{
		Name: "createTrigger",
		Forward: func(a CreateTriggerArgs) ([]string, error) {
			when, level := a.When, a.Level
			if level == "" {
				level = "STATEMENT"
			}
			if a.Constraint {
				when = "AFTER"
			}
			if when == "" {
				return nil, errors.New(`"when" (BEFORE/AFTER/INSTEAD OF) has to be specified`)
			}

			isInsteadOf := insteadOf.MatchString(when)
			if isInsteadOf {
				level = "ROW"
				if a.Condition != "" {
					return nil, errors.New("INSTEAD OF trigger can't have condition specified")
				}
			}

			if len(a.Operations) == 0 {
				return nil, errors.New(`"operations" (INSERT/UPDATE[ OF ...]/DELETE/TRUNCATE) have to be specified`)
			}

			fn, err := a.functionName()
			if err != nil {
				return nil, err
			}

			kind := "TRIGGER"
			deferral := ""
			if a.Constraint {
				kind = "CONSTRAINT TRIGGER"
				deferral = "  NOT DEFERRABLE"
				if a.Deferrable {
					deferral = "  " + deferrable(a.InitiallyDeferred)
				}
			}

			condition := ""
			if a.Condition != "" {
				condition = fmt.Sprintf("  WHEN (%s)", a.Condition)
			}

			params := make([]string, len(a.FunctionParams))
			for i, p := range a.FunctionParams {
				params[i] = EscapeValue(p)
			}

			trigger := utils.NewSQLBuilder().
				Create(kind).
				Raw(o.Ident(a.Trigger)).
				Block(fmt.Sprintf("  %s %s ON %s", when, strings.Join(a.Operations, " OR "), o.Literal(a.Table))).
				Block(deferral).
				Block("  FOR EACH " + level).
				Block(condition).
				Block(fmt.Sprintf("  EXECUTE PROCEDURE %s(%s)", o.Literal(fn), joinComma(params))).
				String()

			if a.Definition == "" {
				return join(trigger), nil
			}

			fnOpts := a.FunctionOptions
			fnOpts.Returns = "trigger"
			function, err := o.createFunction(fn, nil, fnOpts, a.Definition)
			if err != nil {
				return nil, err
			}

			return join(function, trigger), nil
		},
		Reverse: func(a CreateTriggerArgs) ([]string, error) {
			stmts, err := DropTrigger(o).Forward(DropTriggerArgs{Table: a.Table, Trigger: a.Trigger})
			if err != nil || a.Definition == "" {
				return stmts, err
			}

			fn, err := a.functionName()
			if err != nil {
				return nil, err
			}

			dropFn, err := DropFunction(o).Forward(DropFunctionArgs{Function: fn})
			if err != nil {
				return nil, err
			}

			return append(stmts, dropFn...), nil
		},
	}
}

// DropTrigger drops a trigger.
func DropTrigger(o Options) Operation[DropTriggerArgs] {
	return Operation[DropTriggerArgs]{
		Name: "dropTrigger",
		Forward: func(a DropTriggerArgs) ([]string, error) {
			return join(utils.NewSQLBuilder().
				Drop("TRIGGER").
				IfExists(a.IfExists).
				Raw(o.Ident(a.Trigger)).
				On(o.Literal(a.Table)).
				Cascade(a.Cascade).
				String()), nil
		},
	}
}

// RenameTrigger renames a trigger. Reversible.
func RenameTrigger(o Options) Operation[RenameTriggerArgs] {
	forward := func(a RenameTriggerArgs) ([]string, error) {
		return join(utils.NewSQLBuilder().
			Alter("TRIGGER").
			Raw(o.Ident(a.From)).
			On(o.Literal(a.Table)).
			RenameTo(o.Ident(a.To)).
			String()), nil
	}

	return Operation[RenameTriggerArgs]{
		Name:    "renameTrigger",
		Forward: forward,
		Reverse: func(a RenameTriggerArgs) ([]string, error) {
			return forward(RenameTriggerArgs{Table: a.Table, From: a.To, To: a.From})
		},
	}
}

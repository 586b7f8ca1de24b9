package builder

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/operations"
	"gopkg.in/yaml.v3"
)

type yamlStep func(b *Builder, node *yaml.Node) error

// yamlOps maps operation names (createTable, addColumns, ...) to a decoder
// for their arguments.
var yamlOps = map[string]yamlStep{}

func init() {
	for _, r := range []registration{
		register(operations.CreateTable),
		register(operations.DropTable),
		register(operations.RenameTable),
		register(operations.AlterTable),
		register(operations.AddColumns),
		register(operations.DropColumns),
		register(operations.RenameColumn),
		register(operations.AlterColumn),
		register(operations.AddConstraint),
		register(operations.DropConstraint),
		register(operations.RenameConstraint),
		register(operations.CreateIndex),
		register(operations.DropIndex),
		register(operations.CreateType),
		register(operations.DropType),
		register(operations.RenameType),
		register(operations.AddTypeValue),
		register(operations.RenameTypeValue),
		register(operations.AddTypeAttribute),
		register(operations.DropTypeAttribute),
		register(operations.SetTypeAttribute),
		register(operations.RenameTypeAttribute),
		register(operations.CreateSchema),
		register(operations.DropSchema),
		register(operations.RenameSchema),
		register(operations.CreateExtension),
		register(operations.DropExtension),
		register(operations.CreateSequence),
		register(operations.DropSequence),
		register(operations.AlterSequence),
		register(operations.RenameSequence),
		register(operations.CreateView),
		register(operations.DropView),
		register(operations.RenameView),
		register(operations.CreateMaterializedView),
		register(operations.DropMaterializedView),
		register(operations.RenameMaterializedView),
		register(operations.RefreshMaterializedView),
		register(operations.CreateFunction),
		register(operations.DropFunction),
		register(operations.RenameFunction),
		register(operations.CreateTrigger),
		register(operations.DropTrigger),
		register(operations.RenameTrigger),
		register(operations.CreateRole),
		register(operations.DropRole),
		register(operations.AlterRole),
		register(operations.RenameRole),
		register(operations.CreatePolicy),
		register(operations.DropPolicy),
		register(operations.AlterPolicy),
		register(operations.RenamePolicy),
		register(operations.CreateDomain),
		register(operations.DropDomain),
		register(operations.AlterDomain),
		register(operations.RenameDomain),
		register(operations.SQL),
	} {
		yamlOps[r.name] = r.step
	}
}

type registration struct {
	name string
	step yamlStep
}

func register[A any](mk func(operations.Options) operations.Operation[A]) registration {
	return registration{
		name: mk(operations.Options{}).Name,
		step: func(b *Builder, node *yaml.Node) error {
			op := mk(b.opts)

			var args A
			if err := node.Decode(&args); err != nil {
				return errors.Wrapf(err, "failed to decode arguments of %s", op.Name)
			}

			return run(b, op, args)
		},
	}
}

// OperationNames lists the operation names accepted by Apply, sorted.
func OperationNames() []string {
	names := make([]string, 0, len(yamlOps))
	for name := range yamlOps {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Apply decodes node as the arguments of the named operation and runs it.
//
// Example:
//
//	var node yaml.Node
//	_ = yaml.Unmarshal([]byte("table: users\ncolumns:\n  id: id\n"), &node)
//	err := b.Apply("createTable", node.Content[0])
func (b *Builder) Apply(name string, node *yaml.Node) error {
	if b.err != nil {
		return b.err
	}

	step, ok := yamlOps[name]
	if !ok {
		b.err = errors.Errorf("line %d: unknown operation %q", node.Line, name)
		return b.err
	}

	if err := step(b, node); err != nil {
		if b.err == nil {
			b.err = err
		}
		return b.err
	}

	return nil
}

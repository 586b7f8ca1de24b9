package cmd

import (
	"github.com/pseudomuto/pgmigrate/pkg/project"
	"go.uber.org/fx"
)

var Module = fx.Module("cli",
	fx.Provide(
		func() *project.Project { return project.New(".") },
		fx.Annotate(initCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(create, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(up, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(down, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(redo, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(status, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(dev, fx.ResultTags(`group:"commands"`)),
	),
	fx.Invoke(Run),
)

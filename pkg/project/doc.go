// Package project manages the files of a pgmigrate project: the
// pgmigrate.yaml configuration and the migrations directory.
//
// # Project Structure
//
//	project-root/
//	├── pgmigrate.yaml                      # Configuration
//	└── migrations/
//	    ├── 1700000000000_create_users.sql  # Up/down sections
//	    └── 1700000100000_add_roles.yaml    # Declarative operations
//
// Migration files are named <timestamp>_<name>.<ext>. The timestamp is either
// epoch milliseconds or a 17 digit UTC date, and files run in name order.
//
// # Usage Example
//
//	proj := project.New("/path/to/app")
//	if err := proj.Initialize(project.InitOptions{}); err != nil {
//		log.Fatal(err)
//	}
//
//	path, err := proj.CreateMigration(project.CreateOptions{
//		Name:     "create users",
//		Language: project.LanguageSQL,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Println(path) // migrations/1700000000000_create_users.sql
package project

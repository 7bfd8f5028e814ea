package hclloader

import "github.com/hashicorp/hcl/v2"

// projectBlock is the optional `project` block naming the project and its
// build directory.
type projectBlock struct {
	Name     string `hcl:"name,label"`
	BuildDir string `hcl:"build_dir,optional"`
}

// toolBlock carries arbitrary tool variables; the attribute set is open
// because toolchains define their own variables.
type toolBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// environmentBlock declares an environment, either from a toolchain or as
// a clone of another environment.
type environmentBlock struct {
	Name      string       `hcl:"name,label"`
	Toolchain string       `hcl:"toolchain,optional"`
	Base      string       `hcl:"base,optional"`
	Variant   string       `hcl:"variant,optional"`
	Tools     []*toolBlock `hcl:"tool,block"`
}

// requirementsBlock is the content of a `public` or `private` block.
type requirementsBlock struct {
	IncludeDirs  []string `hcl:"include_dirs,optional"`
	Defines      []string `hcl:"defines,optional"`
	CompileFlags []string `hcl:"compile_flags,optional"`
	LinkFlags    []string `hcl:"link_flags,optional"`
	LinkLibs     []string `hcl:"link_libs,optional"`
	LibDirs      []string `hcl:"lib_dirs,optional"`
}

// libraryBlock declares a static (default) or shared library.
type libraryBlock struct {
	Name        string             `hcl:"name,label"`
	Environment string             `hcl:"environment,optional"`
	Kind        string             `hcl:"kind,optional"`
	Sources     []string           `hcl:"sources,optional"`
	OutputName  string             `hcl:"output_name,optional"`
	Link        []string           `hcl:"link,optional"`
	LinkPrivate []string           `hcl:"link_private,optional"`
	Public      *requirementsBlock `hcl:"public,block"`
	Private     *requirementsBlock `hcl:"private,block"`
}

// programBlock declares an executable.
type programBlock struct {
	Name        string             `hcl:"name,label"`
	Environment string             `hcl:"environment,optional"`
	Sources     []string           `hcl:"sources,optional"`
	OutputName  string             `hcl:"output_name,optional"`
	Link        []string           `hcl:"link,optional"`
	LinkPrivate []string           `hcl:"link_private,optional"`
	Default     bool               `hcl:"default,optional"`
	Private     *requirementsBlock `hcl:"private,block"`
}

// objectLibraryBlock declares a compile-only target.
type objectLibraryBlock struct {
	Name        string             `hcl:"name,label"`
	Environment string             `hcl:"environment,optional"`
	Sources     []string           `hcl:"sources,optional"`
	Link        []string           `hcl:"link,optional"`
	Private     *requirementsBlock `hcl:"private,block"`
}

// interfaceBlock declares a header-only target carrying requirements.
type interfaceBlock struct {
	Name   string             `hcl:"name,label"`
	Link   []string           `hcl:"link,optional"`
	Public *requirementsBlock `hcl:"public,block"`
}

// installBlock copies target outputs and plain files into a directory.
type installBlock struct {
	Name        string   `hcl:"name,label"`
	Environment string   `hcl:"environment,optional"`
	Dir         string   `hcl:"dir"`
	Targets     []string `hcl:"targets,optional"`
	Files       []string `hcl:"files,optional"`
}

// installAsBlock copies exactly one file or target output to a full
// destination path.
type installAsBlock struct {
	Name        string `hcl:"name,label"`
	Environment string `hcl:"environment,optional"`
	Dest        string `hcl:"dest"`
	Target      string `hcl:"target,optional"`
	File        string `hcl:"file,optional"`
}

// archiveBlock bundles target outputs and files into a tar or zip file.
type archiveBlock struct {
	Name        string   `hcl:"name,label"`
	Environment string   `hcl:"environment,optional"`
	Output      string   `hcl:"output"`
	Format      string   `hcl:"format,optional"`
	Targets     []string `hcl:"targets,optional"`
	Files       []string `hcl:"files,optional"`
}

// aliasBlock groups targets under a phony name.
type aliasBlock struct {
	Name    string   `hcl:"name,label"`
	Targets []string `hcl:"targets"`
}

// fileRoot decodes every top-level block a build description file may
// contain.
type fileRoot struct {
	Project         *projectBlock         `hcl:"project,block"`
	Environments    []*environmentBlock   `hcl:"environment,block"`
	Libraries       []*libraryBlock       `hcl:"library,block"`
	Programs        []*programBlock       `hcl:"program,block"`
	ObjectLibraries []*objectLibraryBlock `hcl:"object_library,block"`
	Interfaces      []*interfaceBlock     `hcl:"interface,block"`
	Installs        []*installBlock       `hcl:"install,block"`
	InstallAs       []*installAsBlock     `hcl:"install_as,block"`
	Archives        []*archiveBlock       `hcl:"archive,block"`
	Aliases         []*aliasBlock         `hcl:"alias,block"`
	Remain          hcl.Body              `hcl:",remain"`
}

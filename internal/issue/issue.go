// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	SchemaNotFoundId Id = iota + 1
	SchemaParseErrorId
	EnvFileNotFoundId
	StaleFileId
	MissingVariableId
	ContainerEngineNotFoundId
	ServiceRestartFailedId
	PkiToolFailedId
	ConfigLoadFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // catalog key
	mdMsg    MarkdownMsg // rendered with glamour
	docLinks []HttpLink
	extLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal markdown. stylePath is a glamour
// style name ("dark", "light", "notty") or a path to a JSON style.
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range i.docLinks {
			md += "\n- <" + string(link) + ">"
		}
		for _, link := range i.extLinks {
			md += "\n- <" + string(link) + ">"
		}
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	schemaNotFoundIssue = &Issue{
		id: SchemaNotFoundId,
		mdMsg: `
# Schema document not found!

envsync needs a schema describing the configuration groups and items before it can
read any env file.

## Things you can try:
- Point at the schema explicitly:
~~~
$ envsync --schema ./itkschema.yaml show
~~~

- Or set it once in your configuration:
~~~cue
schema: "/opt/itk/itkschema.yaml"
~~~`,
	}

	schemaParseErrorIssue = &Issue{
		id: SchemaParseErrorId,
		mdMsg: `
# Failed to parse the schema document!

The schema is not valid YAML/JSON/TOML/CUE, or a required field is missing.

## Required fields:
- ` + "`groups[].id`" + ` and ` + "`groups[].items`" + `
- ` + "`items[].name`" + ` and ` + "`items[].type`" + ` (` + "`string`" + ` or ` + "`bool`" + `)
- ` + "`items[].env_var.file`" + ` and ` + "`items[].env_var.name`" + `

## Example item:
~~~yaml
groups:
  - id: dfsp
    name: DFSP
    items:
      - name: DFSP ID
        type: string
        env_var:
          file: mc
          name: DFSP_ID
~~~`,
	}

	envFileNotFoundIssue = &Issue{
		id: EnvFileNotFoundId,
		mdMsg: `
# Env file not found!

One of the configured env files does not exist or cannot be read.

## Things you can try:
- Check the paths bound to each logical file key:
~~~
$ envsync config show
~~~

- Override a path for this run:
~~~
$ envsync --env-file mc=./mojaloop-connector.env edit
~~~`,
	}

	staleFileIssue = &Issue{
		id: StaleFileId,
		mdMsg: `
# The env file changed on disk!

The line a value was read from is no longer the same, so saving would overwrite
somebody else's edit. Nothing was written to that file.

## Things you can try:
- Restart the editing session to reload the current values
- Compare the file with what you expected:
~~~
$ envsync show
~~~`,
	}

	missingVariableIssue = &Issue{
		id: MissingVariableId,
		mdMsg: `
# Variable not present in its env file!

The item you changed is bound to a variable that does not appear in the file,
so there is no line to rewrite.

## Things you can try:
- Add the variable to the env file by hand and reload
- Let envsync append missing variables:
~~~cue
save: missing_variable: "append"
~~~`,
	}

	containerEngineNotFoundIssue = &Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# Container engine not found!

Restarting services needs the Docker or Podman CLI.

## Things you can try:
- Install Docker: https://docs.docker.com/get-docker/
- Install Podman: https://podman.io
- Select the engine you have:
~~~cue
container_engine: "podman"
~~~`,
	}

	serviceRestartFailedIssue = &Issue{
		id: ServiceRestartFailedId,
		mdMsg: `
# Some services failed to restart!

Your changes were saved, but at least one container did not restart.

## Things you can try:
- Inspect the container logs:
~~~
$ docker logs itk-mojaloop-connector
~~~

- Retry the restart only:
~~~
$ envsync restart
~~~`,
	}

	pkiToolFailedIssue = &Issue{
		id: PkiToolFailedId,
		mdMsg: `
# The PKI tool failed!

The external certificate/key tool exited with a non-zero status. Its output is
shown above.

## Things you can try:
- Check that the tool runs on its own:
~~~
$ python3 -u ./pkitools.py --help
~~~

- Configure a different command:
~~~cue
pki: command: "python3 -u /opt/itk/pkitools.py"
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Configuration file locations:
- Linux: ~/.config/envsync/config.cue
- macOS: ~/Library/Application Support/envsync/config.cue
- Windows: %APPDATA%\envsync\config.cue
- ./config.cue in the working directory

## Things you can try:
- Create a default configuration:
~~~
$ envsync config init
~~~

## Example configuration:
~~~cue
schema: "itkschema.yaml"
env_files: [{key: "mc", path: "mojaloop-connector.env"}]
container_engine: "docker"
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

envsync could not write an env file or run the container engine.

## Things you can try:
- Check ownership of the env files and their directory
- For Docker, ensure you are in the docker group:
~~~
$ sudo usermod -aG docker $USER
~~~`,
	}

	issues = map[Id]*Issue{
		schemaNotFoundIssue.Id():          schemaNotFoundIssue,
		schemaParseErrorIssue.Id():        schemaParseErrorIssue,
		envFileNotFoundIssue.Id():         envFileNotFoundIssue,
		staleFileIssue.Id():               staleFileIssue,
		missingVariableIssue.Id():         missingVariableIssue,
		containerEngineNotFoundIssue.Id(): containerEngineNotFoundIssue,
		serviceRestartFailedIssue.Id():    serviceRestartFailedIssue,
		pkiToolFailedIssue.Id():           pkiToolFailedIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		permissionDeniedIssue.Id():        permissionDeniedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}

// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

const (
	DataDirNotFoundId Id = iota + 1
	DocumentReadFailedId
	DocumentParseFailedId
	BookWriteFailedId
	ConfigLoadFailedId
	PermissionDeniedId
	WatchFailedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

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

// Render turns the guide into terminal output using a glamour style name
// ("dark", "light", "notty", ...) or a path to a style file.
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range i.docLinks {
			md += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			md += "- <" + string(link) + ">\n"
		}
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	dataDirNotFoundIssue = &Issue{
		id: DataDirNotFoundId,
		mdMsg: `
# No data directory found!

yamlbook reads its sources from the ` + "`data/`" + ` directory of the current
working directory, and that directory does not exist here.

## Things you can try:
- Run yamlbook from the project root (the directory that contains ` + "`data/`" + `)
- Create the directory and add at least one ` + "`.yaml`" + ` file:
~~~
$ mkdir -p data
$ printf 'name: example\n' > data/example.yaml
$ yamlbook build
~~~`,
	}

	documentReadFailedIssue = &Issue{
		id: DocumentReadFailedId,
		mdMsg: `
# A source file could not be read!

The build stops at the first file it cannot read, and the previous
` + "`json/book.json`" + ` is left as it was.

## Things you can try:
- Check that the file still exists and is a regular file
- Check the file and directory permissions
- Remove broken symbolic links under ` + "`data/`",
	}

	documentParseFailedIssue = &Issue{
		id: DocumentParseFailedId,
		mdMsg: `
# A source file is not valid YAML!

Every ` + "`.yaml`" + ` file under ` + "`data/`" + ` must hold exactly one YAML document
whose values can be written as JSON.

## Common causes:
- Unbalanced brackets or quotes
- Inconsistent indentation
- Several documents separated by ` + "`---`" + ` in one file
- ` + "`.nan`" + ` or ` + "`.inf`" + ` values, which JSON cannot represent
- Two mapping keys that read the same once converted to text (for example ` + "`1`" + ` and ` + "`\"1\"`" + `)

## Things you can try:
- Fix the file at the reported line and run the build again
- Split multi-document files into one file per document`,
	}

	bookWriteFailedIssue = &Issue{
		id: BookWriteFailedId,
		mdMsg: `
# The book could not be written!

yamlbook writes the combined result to ` + "`json/book.json`" + `. The ` + "`json/`" + `
directory is never created automatically.

## Things you can try:
- Create the output directory:
~~~
$ mkdir -p json
~~~
- Check that you can write to ` + "`json/`" + `
- Check the free disk space`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file is written in CUE and checked against a schema.

## Things you can try:
- Run ` + "`yamlbook config path`" + ` to see which file is used
- Run ` + "`yamlbook config init`" + ` to write a file with the defaults
- Compare your file with the defaults:
~~~cue
ui: {
	color_scheme: "auto"
	verbose:      false
	log_level:    "warn"
}
watch: {
	debounce:     "300ms"
	clear_screen: false
	ignore: []
}
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

yamlbook needs read access to everything under ` + "`data/`" + ` and write access
to ` + "`json/`" + `.

## Things you can try:
- Check file and directory permissions
- Run yamlbook from a directory you own`,
	}

	watchFailedIssue = &Issue{
		id: WatchFailedId,
		mdMsg: `
# The file watcher stopped!

The operating system refused to watch more files.

## Things you can try:
- Raise the inotify limit on Linux:
~~~
$ sudo sysctl fs.inotify.max_user_watches=524288
~~~
- Add noisy directories to ` + "`watch.ignore`" + ` in the configuration`,
		extLinks: []HttpLink{"https://github.com/fsnotify/fsnotify#linux"},
	}

	issues = map[Id]*Issue{
		dataDirNotFoundIssue.Id():     dataDirNotFoundIssue,
		documentReadFailedIssue.Id():  documentReadFailedIssue,
		documentParseFailedIssue.Id(): documentParseFailedIssue,
		bookWriteFailedIssue.Id():     bookWriteFailedIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		permissionDeniedIssue.Id():    permissionDeniedIssue,
		watchFailedIssue.Id():         watchFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

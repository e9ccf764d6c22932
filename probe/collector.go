package probe

import (
	"bufio"
	"strings"

	"github.com/pkg/errors"

	"isortprobe/entities"
)

// CollectSections splits sorter output into blank-line separated import sections.
func CollectSections(output string) ([]entities.ImportSection, error) {
	var sections []entities.ImportSection
	var current entities.ImportSection

	flush := func() {
		if len(current.Lines) > 0 {
			sections = append(sections, current)
			current = entities.ImportSection{}
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())

		if trimmedLine == "" {
			flush()
			continue
		}

		module := parseImportLine(trimmedLine)
		if module == "" {
			// Continuation lines of wrapped imports and anything else the sorter prints.
			continue
		}
		current.Lines = append(current.Lines, entities.ImportLine{Text: trimmedLine, Module: module})
	}
	flush()

	err := scanner.Err()
	if err != nil {
		return nil, errors.Wrap(err, "scanning sorter output")
	}

	return sections, nil
}

// FindModuleSection returns the index of the first section naming module, or -1.
func FindModuleSection(sections []entities.ImportSection, module string) int {
	for i, section := range sections {
		for _, line := range section.Lines {
			if line.Module == module {
				return i
			}
		}
	}
	return -1
}

// parseImportLine extracts the top-level module from an import statement.
func parseImportLine(line string) string {
	var target string

	switch {
	case strings.HasPrefix(line, "import "):
		target = strings.TrimPrefix(line, "import ")
	case strings.HasPrefix(line, "from "):
		rest := strings.TrimPrefix(line, "from ")
		end := strings.Index(rest, " import")
		if end == -1 {
			return ""
		}
		target = rest[:end]
	default:
		return ""
	}

	// "import a.b as c, d" names a first.
	target = strings.TrimSpace(target)
	if i := strings.IndexAny(target, " ,"); i != -1 {
		target = target[:i]
	}

	// Relative imports have no top-level module.
	if target == "" || strings.HasPrefix(target, ".") {
		return ""
	}

	if i := strings.Index(target, "."); i != -1 {
		target = target[:i]
	}
	return target
}

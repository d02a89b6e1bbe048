package console

import (
	"fmt"
	"slices"
	"strings"
)

const docHeader = "Documented commands (type help <topic>):"

var helpTopics = map[string]string{
	"quit":    "Exits the program with formatting\n",
	"EOF":     "Exits the program without formatting\n",
	"create":  "Creates a class of any type\n[Usage]: create <className>\n",
	"show":    "Shows an individual instance of a class\n[Usage]: show <className> <objectId>\n",
	"destroy": "Destroys an individual instance of a class\n[Usage]: destroy <className> <objectId>\n",
	"all":     "Shows all objects, or all of a class\n[Usage]: all <className>\n",
	"count":   "Usage: count <class_name>",
	"update":  "Updates an object with new information\nUsage: update <className> <id> <attName> <attVal>\n",
	"help":    `List available commands with "help" or detailed help with "help cmd".`,
}

func (s *Shell) doHelp(arg string) error {
	if topic, _, _ := strings.Cut(arg, " "); topic != "" {
		text, ok := helpTopics[topic]
		if !ok {
			s.println(fmt.Sprintf(noHelpFmt, topic))
			return nil
		}
		s.println(text)
		return nil
	}

	names := make([]string, 0, len(helpTopics))
	for name := range helpTopics {
		names = append(names, name)
	}
	slices.Sort(names)

	s.println("")
	s.println(docHeader)
	s.println(strings.Repeat("=", len(docHeader)))
	s.println(strings.Join(names, "  "))
	s.println("")
	return nil
}

package narrator

import (
	"fmt"
	"strings"

	"replay-doctor/internal/session"
)

const unknownComponent = "?unknown component?"

// Narrate turns an ordered event stream into the textual story of the
// session, one sentence per recognized event. Unrecognized events are
// skipped silently. The function is pure: same events, same text.
func Narrate(events []session.Event) string {
	var lines []string
	for _, ev := range events {
		if line, ok := lineFor(ev); ok {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func lineFor(ev session.Event) (string, bool) {
	switch ev.Kind {
	case session.KindMouseInteraction:
		return mouseLine(ev.Mouse)
	case session.KindCustomSignal:
		return signalLine(ev.Tag, ev.Payload)
	default:
		return "", false
	}
}

func mouseLine(m session.MouseInteraction) (string, bool) {
	switch m {
	case session.MouseUp:
		return "User released the mouse button.", true
	case session.MouseDown:
		return "User pressed the mouse button.", true
	case session.Click:
		return "User clicked the mouse button.", true
	case session.ContextMenu:
		return "User right-clicked the mouse button.", true
	case session.DblClick:
		return "User double-clicked the mouse button.", true
	case session.TouchStart:
		return "User touched the screen.", true
	case session.TouchEnd:
		return "User lifted their finger from the screen.", true
	default:
		return "", false
	}
}

func signalLine(tag string, p session.Payload) (string, bool) {
	switch tag {
	case "clicked-node-not-found":
		return "User clicked on a node that does not exist.", true
	case "clicked-without-clicking-on-any-react-component":
		return "User clicked on a dom node with no corresponding React component.", true
	case "no-view-change-after-click":
		return fmt.Sprintf("No view change after click on the component (%s).", componentPath(p.ComponentStack)), true
	case "rage-click":
		return fmt.Sprintf("User clicked repeatedly in a short period of time, and their last click was on the react component (%s). "+
			"First, decide if this was a bug. If not, think of ways to make it so they don't have to click this much "+
			"and offer them to the user in the form of three options labeled a, b, and c. "+
			"Then ask the user which task to continue forward with.", componentPath(p.ComponentStack)), true
	case "rage-click-with-no-react-fiber":
		return "User clicked repeatedly in a short period of time, on a node with no corresponding React fiber.", true
	case "dom-mutation":
		return "Dom mutation performed.", true
	case "media-load-error":
		return fmt.Sprintf("Media load error on url: `%s`. (In component: %s).", p.URL, componentPath(p.ComponentStack)), true
	default:
		return "", false
	}
}

// componentPath renders a component stack as "App > Button", substituting
// a placeholder for entries the recorder could not name.
func componentPath(stack []string) string {
	parts := make([]string, 0, len(stack))
	for _, s := range stack {
		if s == "" {
			s = unknownComponent
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " > ")
}

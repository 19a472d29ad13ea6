package podcast

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// Voices selects the neural voice for each host and the pause inserted
// between turns.
type Voices struct {
	HostA string
	HostB string
	Pause time.Duration
}

// DefaultVoices matches the voices the product shipped with.
func DefaultVoices() Voices {
	return Voices{
		HostA: "en-US-AvaNeural",
		HostB: "en-US-AndrewNeural",
		Pause: 400 * time.Millisecond,
	}
}

// SSML renders the script as an SSML document, interleaving the two hosts'
// lines. Line text is XML-escaped, and a break separates consecutive turns.
func (s *Script) SSML(v Voices) string {
	var sb strings.Builder
	sb.WriteString(`<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xml:lang="en-US">`)
	sb.WriteString("\n")

	breakTag := fmt.Sprintf(`<break time="%dms"/>`, v.Pause.Milliseconds())
	n := max(len(s.HostA), len(s.HostB))
	first := true
	turn := func(voice, line string) {
		if strings.TrimSpace(line) == "" {
			return
		}
		if !first {
			sb.WriteString(breakTag)
			sb.WriteString("\n")
		}
		first = false
		fmt.Fprintf(&sb, "<voice name=%q>%s</voice>\n", voice, html.EscapeString(line))
	}
	for i := 0; i < n; i++ {
		if i < len(s.HostA) {
			turn(v.HostA, s.HostA[i])
		}
		if i < len(s.HostB) {
			turn(v.HostB, s.HostB[i])
		}
	}

	sb.WriteString("</speak>")
	return sb.String()
}

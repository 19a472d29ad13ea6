package podcast

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeGen struct {
	resp string
	err  error
}

func (f *fakeGen) Generate(context.Context, string, string) (string, error) {
	return f.resp, f.err
}

func TestWriteScript(t *testing.T) {
	gen := &fakeGen{resp: `
["Welcome to the show!", "That wraps it up."]
["Thanks, glad to be here."]
`}
	s, err := WriteScript(context.Background(), gen, "combined text")
	if err != nil {
		t.Fatalf("WriteScript: %v", err)
	}
	if len(s.HostA) != 2 || len(s.HostB) != 1 {
		t.Fatalf("unexpected script shape: %+v", s)
	}
}

func TestWriteScript_SingleList(t *testing.T) {
	gen := &fakeGen{resp: `["only one list here"]`}
	if _, err := WriteScript(context.Background(), gen, "text"); !errors.Is(err, ErrNoScript) {
		t.Fatalf("want ErrNoScript, got %v", err)
	}
}

func TestSSML_AlternatesVoicesAndEscapes(t *testing.T) {
	s := &Script{
		HostA: []string{"Tell me about A&B.", "Fascinating!"},
		HostB: []string{"It's a <great> story."},
	}
	out := s.SSML(DefaultVoices())

	if !strings.HasPrefix(out, `<speak version="1.0"`) || !strings.HasSuffix(out, "</speak>") {
		t.Fatalf("missing speak envelope:\n%s", out)
	}
	if !strings.Contains(out, "A&amp;B") || !strings.Contains(out, "&lt;great&gt;") {
		t.Errorf("text not escaped:\n%s", out)
	}
	if strings.Count(out, `<break time="400ms"/>`) != 2 {
		t.Errorf("want 2 breaks between 3 turns:\n%s", out)
	}

	ava := strings.Index(out, "en-US-AvaNeural")
	andrew := strings.Index(out, "en-US-AndrewNeural")
	if ava < 0 || andrew < 0 || andrew < ava {
		t.Errorf("voices missing or out of order:\n%s", out)
	}
}

func TestSSML_SkipsBlankLines(t *testing.T) {
	s := &Script{HostA: []string{"Hello.", "   "}, HostB: []string{""}}
	out := s.SSML(DefaultVoices())
	if strings.Count(out, "<voice") != 1 {
		t.Errorf("blank lines should be skipped:\n%s", out)
	}
	if strings.Contains(out, "<break") {
		t.Errorf("single turn needs no break:\n%s", out)
	}
}

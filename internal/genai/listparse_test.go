package genai

import (
	"reflect"
	"testing"
)

func TestStringList_Plain(t *testing.T) {
	got, ok := StringList(`["Marseille", "Nice"]`)
	if !ok {
		t.Fatal("expected a list")
	}
	want := []string{"Marseille", "Nice"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestStringList_FencedCodeBlock(t *testing.T) {
	raw := "```python\n['Palais des Papes', 'Arena of Nîmes']\n```"
	got, ok := StringList(raw)
	if !ok {
		t.Fatal("expected a list")
	}
	want := []string{"Palais des Papes", "Arena of Nîmes"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestStringList_SurroundingProse(t *testing.T) {
	raw := "Sure! Here are the relevant headings:\n[\"Old Port\", \"Castle Hill\"]\nLet me know if you need more."
	got, ok := StringList(raw)
	if !ok {
		t.Fatal("expected a list")
	}
	if len(got) != 2 || got[0] != "Old Port" {
		t.Fatalf("unexpected list: %v", got)
	}
}

func TestStringList_BracketsInsideQuotes(t *testing.T) {
	got, ok := StringList(`["Section [draft]", "Other"]`)
	if !ok {
		t.Fatal("expected a list")
	}
	if got[0] != "Section [draft]" {
		t.Fatalf("bracket inside quotes mangled: %q", got[0])
	}
}

func TestStringList_EscapedQuote(t *testing.T) {
	got, ok := StringList(`['Rome\'s Legacy']`)
	if !ok {
		t.Fatal("expected a list")
	}
	if got[0] != "Rome's Legacy" {
		t.Fatalf("escape not handled: %q", got[0])
	}
}

func TestStringList_Malformed(t *testing.T) {
	cases := []string{
		"",
		"no list here at all",
		"[1, 2, 3]",               // not strings
		"[unquoted, items]",       // not strings
		`["unterminated`,          // never closes
		`{"key": "value"}`,        // an object, not a list
	}
	for _, raw := range cases {
		if got, ok := StringList(raw); ok {
			t.Errorf("StringList(%q): expected failure, got %v", raw, got)
		}
	}
}

func TestStringList_EmptyListIsValid(t *testing.T) {
	got, ok := StringList("[]")
	if !ok {
		t.Fatal("expected an (empty) list")
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
}

func TestStringLists_TwoSpeakerScripts(t *testing.T) {
	raw := "```\n[\"Hi, welcome to the show.\", \"Today we cover Provence.\"]\n[\"Thanks! Glad to be here.\", \"Let's dive in.\"]\n```"
	lists := StringLists(raw, 0)
	if len(lists) != 2 {
		t.Fatalf("expected 2 lists, got %d: %v", len(lists), lists)
	}
	if lists[1][0] != "Thanks! Glad to be here." {
		t.Fatalf("second list wrong: %v", lists[1])
	}
}

func TestStringLists_SkipsNonStringLists(t *testing.T) {
	raw := "[1, 2] then ['a', 'b']"
	lists := StringLists(raw, 0)
	if len(lists) != 1 {
		t.Fatalf("expected 1 list, got %d", len(lists))
	}
	if !reflect.DeepEqual(lists[0], []string{"a", "b"}) {
		t.Fatalf("got %v", lists[0])
	}
}

func TestCapTokens(t *testing.T) {
	text := "one two three four five six seven eight nine ten"
	capped := CapTokens(text, 5)
	if EstimateTokens(capped) > 5 {
		t.Fatalf("capped text still estimates %d tokens", EstimateTokens(capped))
	}
	if CapTokens("short", 100) != "short" {
		t.Fatal("text under the cap must pass through unchanged")
	}
}

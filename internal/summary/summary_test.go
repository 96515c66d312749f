package summary

import (
	"encoding/json"
	"testing"
)

func TestNormalizeEmitsArrays(t *testing.T) {
	b, err := json.Marshal(Result{Summary: "s"}.Normalize())
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"summary":"s","code_blocks":[],"key_concepts":[]}` {
		t.Fatalf("got %s", b)
	}
}

func TestEqualTreatsNilAsEmpty(t *testing.T) {
	if !(Result{Summary: "s"}).Equal(Result{Summary: "s", CodeBlocks: []string{}}) {
		t.Fatal("nil and empty should compare equal")
	}
	if (Result{KeyConcepts: []string{"a"}}).Equal(Result{KeyConcepts: []string{"b"}}) {
		t.Fatal("different concepts compared equal")
	}
}

func TestRequestOmitsFalseForceRefresh(t *testing.T) {
	b, _ := json.Marshal(Request{Transcript: "t", LectureTitle: "l"})
	if string(b) != `{"transcript":"t","lecture_title":"l"}` {
		t.Fatalf("got %s", b)
	}
}

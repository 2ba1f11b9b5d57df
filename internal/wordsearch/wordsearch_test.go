package wordsearch

import (
	"errors"
	"fmt"
	"testing"

	"golang.org/x/text/unicode/norm"

	"github.com/Klingon-tech/klingseed/pkg/wordlist"
)

func TestScore(t *testing.T) {
	tests := []struct {
		word  string
		query string
		want  int
	}{
		{"abandon", "abandon", 1000},
		{"Abandon", "abandon", 1000},
		{"abandon", "aband", 898},
		{"abandon", "ndon", 497},
		{"cactus", "act", 499},
		{"abandon", "abandn", 290},
		{"bacon", "abandon", 270},
		{"zoo", "abandon", 0},
		{"あいこくしん", "あいこ", 897},
		{"あんこ", "あいこ", 290},
		// Composed query against a decomposed word.
		{norm.NFKD.String("가격"), norm.NFC.String("가격"), 1000},
		{norm.NFKD.String("가격"), norm.NFC.String("가"), 897},
		{norm.NFKD.String("ábaco"), norm.NFC.String("ába"), 898},
		{norm.NFKD.String("élève"), norm.NFC.String("élève"), 1000},
	}
	for _, tt := range tests {
		if got := Score(tt.word, tt.query); got != tt.want {
			t.Errorf("Score(%q, %q) = %d, want %d", tt.word, tt.query, got, tt.want)
		}
	}
}

func TestSearch_English(t *testing.T) {
	tests := []struct {
		query string
		limit int
		want  []string // "score word"
	}{
		{"abandon", 3, []string{"1000 abandon", "270 bacon", "270 cannon"}},
		{"aband", 5, []string{"898 abandon", "280 bind", "280 brand", "280 hand", "280 sand"}},
		{"ndon", 5, []string{"497 abandon", "280 dog", "280 icon", "280 iron", "280 lion"}},
		{"abandn", 5, []string{"290 abandon", "270 again", "270 bacon", "270 banana", "270 bind"}},
		{"Zoo", 4, []string{"1000 zoo", "280 book", "280 box", "280 boy"}},
		{"xyzq", 5, []string{"270 buzz", "270 eye", "270 gaze", "270 gym", "270 jazz"}},
		{"act", 6, []string{"1000 act", "898 actor", "897 action", "897 actual", "896 actress", "499 cactus"}},
		{"ability", 2, []string{"1000 ability", "280 utility"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := Search(tt.query, "english", tt.limit)
			if err != nil {
				t.Fatalf("Search() error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i, m := range got {
				if s := fmt.Sprintf("%d %s", m.Score, m.Word); s != tt.want[i] {
					t.Errorf("result[%d] = %q, want %q", i, s, tt.want[i])
				}
			}
		})
	}
}

func TestSearch_OtherLanguages(t *testing.T) {
	tests := []struct {
		query    string
		language string
		want     []string
	}{
		{"あいこ", "japanese", []string{"897 あいこくしん", "290 あんこ", "290 けいこ"}},
		{"ABACO", "spanish", []string{"499 tabaco", "290 ábaco", "280 abono"}},
	}
	for _, tt := range tests {
		t.Run(tt.language, func(t *testing.T) {
			got, err := Search(tt.query, tt.language, 3)
			if err != nil {
				t.Fatalf("Search() error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i, m := range got {
				if s := fmt.Sprintf("%d %s", m.Score, norm.NFC.String(m.Word)); s != tt.want[i] {
					t.Errorf("result[%d] = %q, want %q", i, s, tt.want[i])
				}
			}
		})
	}
}

func TestSearch_ComposedInput(t *testing.T) {
	tests := []struct {
		language string
		query    string
		want     []string // "score word", words in NFC
	}{
		{"korean", "가격", []string{"1000 가격", "290 간격", "290 자격"}},
		{"korean", "가", []string{"897 가격", "897 가끔", "897 가난"}},
		{"japanese", "がっこう", []string{"1000 がっこう", "290 がいこう", "280 かんこう"}},
		{"japanese", "あおぞら", []string{"1000 あおぞら", "280 あぶら", "270 あいだ"}},
		{"french", "élève", []string{"1000 élève", "270 céleste", "270 colère"}},
		{"french", "académie", []string{"1000 académie", "260 acquérir", "260 anatomie"}},
		{"spanish", "ábaco", []string{"1000 ábaco", "280 ático", "280 ébano"}},
		{"spanish", "ÁBACO", []string{"1000 ábaco", "280 ático", "280 ébano"}},
		{"spanish", "ába", []string{"898 ábaco", "499 rábano", "499 sábado"}},
	}
	for _, tt := range tests {
		t.Run(tt.language+"/"+tt.query, func(t *testing.T) {
			got, err := Search(norm.NFC.String(tt.query), tt.language, len(tt.want))
			if err != nil {
				t.Fatalf("Search() error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i, m := range got {
				if s := fmt.Sprintf("%d %s", m.Score, norm.NFC.String(m.Word)); s != tt.want[i] {
					t.Errorf("[%d] = %q, want %q", i, s, tt.want[i])
				}
			}
		})
	}
}

func TestSearch_Ordering(t *testing.T) {
	got, err := Search("zzzz", "english", 100)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(got) != 13 {
		t.Errorf("len = %d, want 13", len(got))
	}
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if prev.Score < cur.Score || (prev.Score == cur.Score && prev.Word > cur.Word) {
			t.Errorf("results out of order at %d: %v then %v", i, prev, cur)
		}
		if cur.Score <= 0 {
			t.Errorf("non-positive score returned: %v", cur)
		}
	}
}

func TestSearchWords(t *testing.T) {
	words, err := SearchWords("  ACT ", "English", 2)
	if err != nil {
		t.Fatalf("SearchWords() error: %v", err)
	}
	if len(words) != 2 || words[0] != "act" || words[1] != "actor" {
		t.Errorf("SearchWords() = %v, want [act actor]", words)
	}
}

func TestSearch_ZeroLimit(t *testing.T) {
	words, err := SearchWords("abandon", "english", 0)
	if err != nil {
		t.Fatalf("SearchWords() error: %v", err)
	}
	if words == nil || len(words) != 0 {
		t.Errorf("SearchWords() = %#v, want empty slice", words)
	}
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		language string
		limit    int
		want     error
	}{
		{"empty", "", "english", 5, ErrEmptyQuery},
		{"blank", "   ", "english", 5, ErrEmptyQuery},
		{"unknown language", "abandon", "klingon", 5, wordlist.ErrUnsupportedLanguage},
		{"negative limit", "abandon", "english", -1, ErrInvalidLimit},
		{"not provisioned", "abandon", "portuguese", 5, wordlist.ErrWordlistUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Search(tt.query, tt.language, tt.limit)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

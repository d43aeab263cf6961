package grade

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/ai/aitest"
)

func osmosis(answer string) Submission {
	return Submission{
		Answer:       answer,
		Context:      "Osmosis moves water across a membrane.",
		ConceptLabel: "Osmosis",
		Question:     "What is osmosis?",
	}
}

func TestSubmission_Validate(t *testing.T) {
	tests := []struct {
		name string
		sub  Submission
		want error
	}{
		{name: "complete", sub: osmosis("Water moves."), want: nil},
		{name: "missing answer", sub: osmosis(""), want: ErrMissingField},
		{name: "blank answer", sub: osmosis("  \n\t"), want: ErrEmptyAnswer},
		{name: "missing context", sub: Submission{Answer: "x", ConceptLabel: "A", Question: "Q"}, want: ErrMissingField},
		{name: "missing label", sub: Submission{Answer: "x", Context: "C", Question: "Q"}, want: ErrMissingField},
		{name: "missing question", sub: Submission{Answer: "x", Context: "C", ConceptLabel: "A"}, want: ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.sub.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLexicalScorer(t *testing.T) {
	tests := []struct {
		name         string
		answer       string
		wantScore    int
		wantLearned  bool
		wantFeedback string
	}{
		{
			name:         "too brief",
			answer:       "Too short",
			wantScore:    5,
			wantFeedback: briefFeedback,
		},
		{
			name:         "thorough answer",
			answer:       "Osmosis moves water across a membrane because of concentration differences.",
			wantScore:    91,
			wantLearned:  true,
			wantFeedback: FeedbackFor(91),
		},
		{
			name:         "vague answer",
			answer:       "Water goes somewhere through things.",
			wantScore:    12,
			wantFeedback: FeedbackFor(12),
		},
		{
			name:         "off topic answer is clamped",
			answer:       "Nothing relevant here at all really.",
			wantScore:    5,
			wantFeedback: FeedbackFor(5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewLexicalScorer().Score(context.Background(), osmosis(tt.answer))
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if got.Score != tt.wantScore || got.Learned != tt.wantLearned || got.Feedback != tt.wantFeedback {
				t.Fatalf("Score() = %+v, want score %d learned %v", got, tt.wantScore, tt.wantLearned)
			}
		})
	}
}

func TestLexicalScorer_RejectsInvalid(t *testing.T) {
	if _, err := NewLexicalScorer().Score(context.Background(), osmosis("   ")); !errors.Is(err, ErrEmptyAnswer) {
		t.Fatalf("Score() error = %v, want %v", err, ErrEmptyAnswer)
	}
}

func TestTokenize(t *testing.T) {
	got := strings.Join(tokenize("Cell-membrane's role: IS to protect (it) 42x!"), ",")
	want := "cell,membrane,role,protect,42x"
	if got != want {
		t.Fatalf("tokenize() = %q, want %q", got, want)
	}
}

func TestFeedbackFor_Bands(t *testing.T) {
	tests := []struct {
		score  int
		prefix string
	}{
		{100, "Excellent"},
		{85, "Excellent"},
		{84, "Good grasp"},
		{70, "Good grasp"},
		{69, "You're on the right track"},
		{50, "You're on the right track"},
		{49, "Your answer touches"},
		{30, "Your answer touches"},
		{29, "Try to engage"},
		{0, "Try to engage"},
	}

	for _, tt := range tests {
		if got := FeedbackFor(tt.score); !strings.HasPrefix(got, tt.prefix) {
			t.Errorf("FeedbackFor(%d) = %q, want prefix %q", tt.score, got, tt.prefix)
		}
	}
}

func TestAIScorer(t *testing.T) {
	tests := []struct {
		name         string
		response     string
		wantScore    int
		wantLearned  bool
		wantFeedback string
	}{
		{
			name:         "score above range is clamped",
			response:     `{"score": 120, "feedback": "Great explanation."}`,
			wantScore:    100,
			wantLearned:  true,
			wantFeedback: "Great explanation.",
		},
		{
			name:         "score below range is clamped",
			response:     `{"score": -3, "feedback": "Off topic."}`,
			wantScore:    0,
			wantFeedback: "Off topic.",
		},
		{
			name:         "missing feedback uses band feedback",
			response:     `{"score": 72}`,
			wantScore:    72,
			wantFeedback: FeedbackFor(72),
		},
		{
			name:         "learned threshold",
			response:     `{"score": 85, "feedback": "ok"}`,
			wantScore:    85,
			wantLearned:  true,
			wantFeedback: "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := aitest.Static(tt.response)
			got, err := NewAIScorer(client, 1).Score(context.Background(), osmosis("Water diffuses through a membrane."))
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if got.Score != tt.wantScore || got.Learned != tt.wantLearned || got.Feedback != tt.wantFeedback {
				t.Fatalf("Score() = %+v", got)
			}

			calls := client.Calls()
			if len(calls) != 1 || !strings.Contains(calls[0].Prompt, "Water diffuses through a membrane.") ||
				!strings.Contains(calls[0].Prompt, "[Osmosis]") {
				t.Fatalf("calls = %+v", calls)
			}
		})
	}
}

func TestAIScorer_Errors(t *testing.T) {
	errModel := errors.New("model unavailable")
	client := &aitest.Client{Respond: func(string, string) (string, error) { return "", errModel }}

	_, err := NewAIScorer(client, 2).Score(context.Background(), osmosis("Water diffuses."))
	if !errors.Is(err, errModel) {
		t.Fatalf("Score() error = %v, want %v", err, errModel)
	}
	if got := len(client.Calls()); got != 2 {
		t.Fatalf("calls = %d, want 2 retries", got)
	}

	if _, err := NewAIScorer(client, 1).Score(context.Background(), osmosis("")); !errors.Is(err, ErrMissingField) {
		t.Fatalf("Score() error = %v, want %v", err, ErrMissingField)
	}
}

func TestScorers_Get(t *testing.T) {
	scorers := Scorers{"lexical": NewLexicalScorer()}

	if _, err := scorers.Get(""); err != nil {
		t.Fatalf("Get(\"\") error = %v", err)
	}
	if _, err := scorers.Get(" Lexical "); err != nil {
		t.Fatalf("Get(Lexical) error = %v", err)
	}
	if _, err := scorers.Get("ai"); !errors.Is(err, ErrUnknownScorer) {
		t.Fatalf("Get(ai) error = %v, want %v", err, ErrUnknownScorer)
	}
}

package normalizer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
	"github.com/SAP-F-2025/quiz-player/internal/validator"
)

func newTestNormalizer() *Normalizer {
	return New(validator.New(), utils.NewNopLogger())
}

func rawFromJSON(t *testing.T, payload string) *models.RawQuestion {
	t.Helper()
	var raw models.RawQuestion
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))
	return &raw
}

func TestNormalize_MultipleChoice(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name    string
		payload string
		want    []int
		wantErr error
	}{
		{
			name:    "correctIndexes wins",
			payload: `{"id":"Q1","type":"multichoice","text":"Pick","options":["A","B","C"],"correctIndexes":[2,0,2],"correctIndex":1}`,
			want:    []int{0, 2},
		},
		{
			name:    "single correctIndex",
			payload: `{"id":"Q1","type":"multichoice","text":"Pick","options":["A","B"],"correctIndex":1}`,
			want:    []int{1},
		},
		{
			name:    "answers with fractions",
			payload: `{"id":"Q1","type":"multichoice","text":"Pick","answers":[{"text":"A","fraction":"0"},{"text":"B","fraction":"100"}]}`,
			want:    []int{1},
		},
		{
			name:    "index out of range",
			payload: `{"id":"Q1","type":"multichoice","text":"Pick","options":["A"],"correctIndexes":[3]}`,
			wantErr: qerrors.ErrMalformedQuestion,
		},
		{
			name:    "no correct option",
			payload: `{"id":"Q1","type":"multichoice","text":"Pick","options":["A","B"]}`,
			wantErr: qerrors.ErrMalformedQuestion,
		},
		{
			name:    "no options",
			payload: `{"id":"Q1","type":"multichoice","text":"Pick","correctIndex":0}`,
			wantErr: qerrors.ErrNoRenderableContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := n.Normalize(rawFromJSON(t, tt.payload))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.MultipleChoice, q.Type)
			assert.Equal(t, tt.want, q.CorrectIndexes)
		})
	}
}

func TestNormalize_TrueFalse(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name    string
		payload string
		want    bool
		wantErr bool
	}{
		{"answers with fraction", `{"id":"Q5","type":"truefalse","answers":[{"text":"true","fraction":"0"},{"text":"false","fraction":"100"}]}`, false, false},
		{"answers with iscorrect flag", `{"id":"Q5","type":"truefalse","answers":[{"text":"True","iscorrect":1},{"text":"False"}]}`, true, false},
		{"answers without weights are not a derivation", `{"id":"Q5","type":"truefalse","answers":[{"text":"<p>False</p>"},{"text":"<p>True</p>"}]}`, false, true},
		{"zero fractions are not a derivation", `{"id":"Q5","type":"truefalse","answers":[{"text":"false","fraction":"0"},{"text":"true","fraction":"0"}]}`, false, true},
		{"unweighted answers defer to alias", `{"id":"Q5","type":"truefalse","answers":[{"text":"true"},{"text":"false"}],"correct":"false"}`, false, false},
		{"correct alias bool", `{"id":"Q5","type":"truefalse","correct":false}`, false, false},
		{"correctAnswer alias string", `{"id":"Q5","type":"truefalse","correctAnswer":"yes"}`, true, false},
		{"solution alias numeric", `{"id":"Q5","type":"truefalse","solution":1}`, true, false},
		{"options with index", `{"id":"Q5","type":"truefalse","options":["True","False"],"correctIndex":1}`, false, false},
		{"null correct is not a derivation", `{"id":"Q5","type":"truefalse","correct":null}`, false, true},
		{"nothing derivable", `{"id":"Q5","type":"truefalse","text":"Is it?"}`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := n.Normalize(rawFromJSON(t, tt.payload))
			if tt.wantErr {
				assert.ErrorIs(t, err, qerrors.ErrMalformedQuestion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.TrueFalse, q.Type)
			assert.Equal(t, tt.want, q.CorrectValue)
		})
	}
}

func TestNormalize_ReclassifiesTrueFalseMultichoice(t *testing.T) {
	n := newTestNormalizer()

	for _, options := range [][]string{{"False", "True"}, {"TRUE", "false"}, {"<p>True</p>", " False "}} {
		b, _ := json.Marshal(map[string]any{
			"id": "Q9", "type": "multichoice", "text": "Ethernet is L2",
			"options": options, "correctIndexes": []int{indexOf(options, "true")},
		})
		q, err := n.Normalize(rawFromJSON(t, string(b)))
		require.NoError(t, err)
		assert.Equal(t, models.TrueFalse, q.Type, "options %v", options)
		assert.True(t, q.Reclassified)
		assert.True(t, q.CorrectValue, "options %v", options)
	}

	q, err := n.Normalize(rawFromJSON(t, `{"id":"Q9","type":"multichoice","options":["True","Maybe"],"correctIndex":0}`))
	require.NoError(t, err)
	assert.Equal(t, models.MultipleChoice, q.Type)
}

func indexOf(options []string, want string) int {
	for i, o := range options {
		if normBool(utils.CleanText(o)) == (want == "true") && utils.CleanText(o) != "" {
			return i
		}
	}
	return -1
}

func TestNormalize_Matching(t *testing.T) {
	n := newTestNormalizer()

	t.Run("subquestions shape", func(t *testing.T) {
		q, err := n.Normalize(rawFromJSON(t, `{"id":"Q20","type":"matching","subquestions":[
			{"text":"<p>OSI 1</p>","answer":"Physical"},
			{"question":"OSI 2","answertext":"Data link"},
			{"text":"","answer":"dropped"}],
			"distractors":["Session","Physical"]}`))
		require.NoError(t, err)
		assert.Equal(t, []models.MatchPair{
			{Prompt: "OSI 1", Answer: "Physical"},
			{Prompt: "OSI 2", Answer: "Data link"},
		}, q.Pairs)
		assert.Equal(t, []string{"Session"}, q.Distractors)
	})

	t.Run("empty subquestions fall through to pairs", func(t *testing.T) {
		q, err := n.Normalize(rawFromJSON(t, `{"id":"Q20","type":"matching",
			"subquestions":[{"text":"only prompt"}],
			"pairs":[{"left":"SSH","right":"22"}]}`))
		require.NoError(t, err)
		assert.Equal(t, []models.MatchPair{{Prompt: "SSH", Answer: "22"}}, q.Pairs)
	})

	t.Run("stems with choices", func(t *testing.T) {
		q, err := n.Normalize(rawFromJSON(t, `{"id":"Q20","type":"matching",
			"stems":["HTTP","DNS"],"choices":["53","80","443"],"solutions":[1,0]}`))
		require.NoError(t, err)
		assert.Equal(t, []models.MatchPair{{Prompt: "HTTP", Answer: "80"}, {Prompt: "DNS", Answer: "53"}}, q.Pairs)
		assert.Equal(t, []string{"443"}, q.Distractors)
	})

	t.Run("nothing renderable", func(t *testing.T) {
		_, err := n.Normalize(rawFromJSON(t, `{"id":"Q20","type":"matching","pairs":[{"left":"x","right":""}]}`))
		assert.ErrorIs(t, err, qerrors.ErrNoRenderableContent)
	})
}

func TestNormalize_DragIntoText(t *testing.T) {
	n := newTestNormalizer()

	t.Run("bank shape with generic groups", func(t *testing.T) {
		q, err := n.Normalize(rawFromJSON(t, `{"id":"Q40","type":"ddwtos",
			"text":"Routers work at [[1]] and switches at [[2]].",
			"groups":{"1":"Group 1","2":"Group 2"},
			"items":[{"text":"Network layer","group":"1"},{"text":"Data link layer","group":"2"}]}`))
		require.NoError(t, err)
		assert.Equal(t, models.DragIntoText, q.Type)
		assert.Equal(t, []models.DropZone{{ID: 1, ExpectedGroup: "1"}, {ID: 2, ExpectedGroup: "2"}}, q.DropZones)
		assert.False(t, q.GroupMode)
		assert.Equal(t, "Network layer", q.DraggableItems[0].Label)
		assert.Equal(t, "Network layer", q.GroupLabels["1"])
	})

	t.Run("authored group label enables group mode", func(t *testing.T) {
		q, err := n.Normalize(rawFromJSON(t, `{"id":"Q41","type":"ddwtos",
			"text":"[[1]] [[1]] [[2]]",
			"groups":{"1":"Allowed","2":"Denied"},
			"dragboxes":[{"label":"permit","group":1},{"label":"deny","group":2}]}`))
		require.NoError(t, err)
		assert.True(t, q.GroupMode)
		assert.Equal(t, "Allowed", q.GroupLabels["1"])
		assert.Len(t, q.DropZones, 3)
	})

	t.Run("infinite item enables group mode", func(t *testing.T) {
		q, err := n.Normalize(rawFromJSON(t, `{"id":"Q42","type":"ddwtos","text":"[[1]]",
			"dragbox":[{"text":"TCP","group":"1","infinite":"1"}]}`))
		require.NoError(t, err)
		assert.True(t, q.GroupMode)
		assert.True(t, q.DraggableItems[0].Reusable)
	})

	t.Run("single group items are repaired cyclically", func(t *testing.T) {
		q, err := n.Normalize(rawFromJSON(t, `{"id":"Q43","type":"ddwtos","text":"[[1]] [[2]] [[3]]",
			"items":[{"text":"a"},{"text":"b"},{"text":"c"},{"text":"d"}]}`))
		require.NoError(t, err)
		got := make([]string, 0, len(q.DraggableItems))
		for _, it := range q.DraggableItems {
			got = append(got, it.Group)
		}
		assert.Equal(t, []string{"1", "2", "3", "1"}, got)
	})

	t.Run("items sharing a group outside a 1..n sequence keep it", func(t *testing.T) {
		q, err := n.Normalize(rawFromJSON(t, `{"id":"Q48","type":"ddwtos","text":"A [[2]] and B [[2]]",
			"items":[{"text":"router","group":"2"},{"text":"switch","group":"2"}]}`))
		require.NoError(t, err)
		for _, it := range q.DraggableItems {
			assert.Equal(t, "2", it.Group)
		}
	})

	t.Run("gapped zone ids skip the repair", func(t *testing.T) {
		_, err := n.Normalize(rawFromJSON(t, `{"id":"Q49","type":"ddwtos","text":"[[1]] [[3]]",
			"items":[{"text":"a"},{"text":"b"}]}`))
		assert.ErrorIs(t, err, qerrors.ErrNoRenderableContent)
	})

	t.Run("labels found in stem are shortened", func(t *testing.T) {
		q, err := n.Normalize(rawFromJSON(t, `{"id":"Q44","type":"ddwtos",
			"text":"The router forwards packets between different networks using the routing table [[1]]",
			"items":[{"text":"The router forwards packets between different networks using the routing table","group":"1"},{"group":"1"}]}`))
		require.NoError(t, err)
		assert.Equal(t, "The router forwards packets between different networks using…", q.DraggableItems[0].Label)
		assert.Equal(t, "Option 2", q.DraggableItems[1].Label)
	})

	t.Run("zone without matching item fails closed", func(t *testing.T) {
		_, err := n.Normalize(rawFromJSON(t, `{"id":"Q45","type":"ddwtos","text":"[[1]] [[3]]",
			"items":[{"text":"a","group":"1"},{"text":"b","group":"2"}]}`))
		assert.ErrorIs(t, err, qerrors.ErrNoRenderableContent)
	})

	t.Run("no zones", func(t *testing.T) {
		_, err := n.Normalize(rawFromJSON(t, `{"id":"Q46","type":"ddwtos","text":"no markers","items":[{"text":"a"}]}`))
		assert.ErrorIs(t, err, qerrors.ErrNoRenderableContent)
	})

	t.Run("groups sent as array", func(t *testing.T) {
		raw := rawFromJSON(t, `{"id":"Q47","type":"ddwtos","text":"[[0]]","groups":["Zero"],"items":[{"text":"a","group":0}]}`)
		assert.Equal(t, "Zero", raw.Groups["0"])
	})
}

func TestNormalize_UnknownType(t *testing.T) {
	_, err := newTestNormalizer().Normalize(rawFromJSON(t, `{"id":"Q1","type":"essay"}`))
	assert.ErrorIs(t, err, qerrors.ErrMalformedQuestion)
}

func TestNormalize_Deterministic(t *testing.T) {
	n := newTestNormalizer()
	payload := `{"id":"Q43","type":"ddwtos","text":"[[1]] [[2]]","groups":{"1":"Ports","2":"Protocols"},
		"items":[{"text":"22","group":"1"},{"text":"SSH","group":"2"}]}`

	first, err := n.Normalize(rawFromJSON(t, payload))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := n.Normalize(rawFromJSON(t, payload))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

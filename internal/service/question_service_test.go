package service

import (
	"cbt_backend/internal/model"
	"cbt_backend/internal/util"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOptions(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    []model.QuestionOption
		wantErr bool
	}{
		{
			name: "plain string array",
			raw:  `["Paris", "London", "Berlin"]`,
			want: []model.QuestionOption{
				{OptionOrder: 0, Text: "Paris"},
				{OptionOrder: 1, Text: "London"},
				{OptionOrder: 2, Text: "Berlin"},
			},
		},
		{
			name: "objects with explicit order",
			raw:  `[{"order": 1, "text": "London"}, {"order": 0, "text": "Paris"}]`,
			want: []model.QuestionOption{
				{OptionOrder: 1, Text: "London"},
				{OptionOrder: 0, Text: "Paris"},
			},
		},
		{
			name: "objects without order take array position",
			raw:  `[{"text": "Paris"}, {"text": "London"}]`,
			want: []model.QuestionOption{
				{OptionOrder: 0, Text: "Paris"},
				{OptionOrder: 1, Text: "London"},
			},
		},
		{name: "empty payload", raw: ``, wantErr: true},
		{name: "single option", raw: `["only one"]`, wantErr: true},
		{name: "empty option text", raw: `["Paris", ""]`, wantErr: true},
		{name: "duplicate order", raw: `[{"order": 0, "text": "a"}, {"order": 0, "text": "b"}]`, wantErr: true},
		{name: "sparse order", raw: `[{"order": 0, "text": "a"}, {"order": 5, "text": "b"}]`, wantErr: true},
		{name: "not an array", raw: `{"text": "a"}`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeOptions(json.RawMessage(tc.raw))
			if tc.wantErr {
				var validation *util.ValidationError
				require.True(t, errors.As(err, &validation))
				assert.Equal(t, "options", validation.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openprobity/crosswalk/pkg/domain"
	"github.com/openprobity/crosswalk/pkg/schema"
	"github.com/openprobity/crosswalk/pkg/script"
)

func sourceSchema() *schema.Schema {
	return schema.New("raw",
		schema.Field{Name: "JOB TITLE", Type: schema.TypeString},
		schema.Field{Name: "1990", Type: schema.TypeNumber},
		schema.Field{Name: "1995", Type: schema.TypeNumber},
	)
}

func destinationSchema() *schema.Schema {
	return schema.New("clean",
		schema.Field{Name: "occupation", Type: schema.TypeString},
		schema.Field{Name: "year", Type: schema.TypeYear},
		schema.Field{Name: "value", Type: schema.TypeNumber},
	)
}

func buildCrosswalk(t *testing.T, lines ...string) *domain.Crosswalk {
	t.Helper()
	cw := domain.NewCrosswalk("survey", sourceSchema(), destinationSchema())
	for _, line := range lines {
		require.NoError(t, cw.AppendScript(line))
	}
	return cw
}

func TestCrosswalk_Check(t *testing.T) {
	cw := buildCrosswalk(t,
		"RENAME > 'occupation' < 'JOB TITLE'",
		"PIVOT_LONGER > ['year', 'value'] < ['1990', '1995']",
	)
	require.NoError(t, cw.Check())
}

func TestCrosswalk_CheckRejectsUnknownDestination(t *testing.T) {
	cw := buildCrosswalk(t, "RENAME > 'salary' < 'JOB TITLE'")
	err := cw.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"salary" not in destination schema`)
	assert.Contains(t, err.Error(), "action 1")
}

func TestCrosswalk_CheckTracksColumnState(t *testing.T) {
	t.Run("renamed source remains visible under its new name", func(t *testing.T) {
		cw := buildCrosswalk(t,
			"RENAME > 'occupation' < 'JOB TITLE'",
			"SELECT > 'occupation' < ['occupation']",
		)
		require.NoError(t, cw.Check())
	})

	t.Run("old name is gone after rename", func(t *testing.T) {
		cw := buildCrosswalk(t,
			"RENAME > 'occupation' < 'JOB TITLE'",
			"SELECT > 'occupation' < ['JOB TITLE']",
		)
		err := cw.Check()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not present at this point in the sequence")
	})

	t.Run("pivoted columns are gone downstream", func(t *testing.T) {
		cw := buildCrosswalk(t,
			"PIVOT_LONGER > ['year', 'value'] < ['1990', '1995']",
			"SELECT > 'value' < ['1990']",
		)
		err := cw.Check()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "action 2")
	})
}

func TestCrosswalk_CheckRequiresSchemas(t *testing.T) {
	cw := &domain.Crosswalk{Name: "partial", SourceSchema: sourceSchema()}
	assert.Error(t, cw.Check())

	cw = &domain.Crosswalk{SourceSchema: sourceSchema(), DestinationSchema: destinationSchema()}
	assert.Error(t, cw.Check(), "empty name rejected")
}

func TestCrosswalk_JSONRoundTrip(t *testing.T) {
	cw := buildCrosswalk(t,
		"RENAME > 'occupation' < 'JOB TITLE'",
		"PIVOT_LONGER > ['year', 'value'] < ['1990', '1995']",
	)

	raw, err := json.Marshal(cw)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, []any{
		"RENAME > 'occupation' < 'JOB TITLE'",
		"PIVOT_LONGER > ['year', 'value'] < ['1990', '1995']",
	}, doc["actions"], "actions persist as script text")

	var back domain.Crosswalk
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, cw.ID, back.ID)
	assert.Equal(t, cw.Name, back.Name)
	require.Len(t, back.Actions, 2)
	assert.Equal(t, script.KindRename, back.Actions[0].Kind)
	assert.Equal(t, cw.Actions[1].String(), back.Actions[1].String())
	require.NoError(t, back.Check())
}

func TestCrosswalk_UnmarshalRejectsBadScript(t *testing.T) {
	raw := []byte(`{"name": "broken", "actions": ["FROBNICATE > 'x' < 'y'"]}`)
	var cw domain.Crosswalk
	err := json.Unmarshal(raw, &cw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `crosswalk "broken"`)
}

func TestTransform_Cite(t *testing.T) {
	cw := buildCrosswalk(t, "RENAME > 'occupation' < 'JOB TITLE'")
	tr := domain.NewTransform(cw, "aaa", "bbb")

	assert.Equal(t, cw.Name, tr.Name)
	assert.Equal(t, "aaa", tr.SourceChecksum)
	assert.Equal(t, "bbb", tr.DestinationChecksum)
	assert.False(t, tr.Created.IsZero())

	tr.Cite(domain.Citation{Author: "Whyte", Title: "Survey 2023", Year: 2023})
	assert.Equal(t, "Whyte", tr.Citation.Author)
	require.Len(t, tr.Version, 1)
	assert.Contains(t, tr.Version[0].Description, `citation recorded for "Survey 2023"`)
	assert.NotEmpty(t, tr.Version[0].Updated)
}

func TestTransform_JSONRoundTrip(t *testing.T) {
	cw := buildCrosswalk(t, "RENAME > 'occupation' < 'JOB TITLE'")
	tr := domain.NewTransform(cw, "aaa", "bbb")
	tr.Cite(domain.Citation{Title: "Survey 2023"})

	raw, err := json.Marshal(tr)
	require.NoError(t, err)

	var back domain.Transform
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, tr.ID, back.ID)
	assert.Equal(t, tr.SourceChecksum, back.SourceChecksum)
	assert.Equal(t, tr.DestinationChecksum, back.DestinationChecksum)
	assert.Equal(t, "Survey 2023", back.Citation.Title)
	require.NotNil(t, back.Crosswalk)
	assert.Equal(t, cw.Name, back.Crosswalk.Name)
}

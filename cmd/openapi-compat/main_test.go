package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
basePath: /api
paths:
  /posts:
    get:
      parameters:
        - name: page
          in: query
      responses:
        "200": {}
    post:
      security:
        - BearerAuth: []
      responses:
        "201": {}
        "400": {}
  /users:
    get:
      responses:
        "200": {}
`

func TestCompare_Unchanged(t *testing.T) {
	base, err := parse([]byte(baseYAML))
	require.NoError(t, err)
	assert.Empty(t, compare(base, base))
}

func TestCompare_BreakingChanges(t *testing.T) {
	base, err := parse([]byte(baseYAML))
	require.NoError(t, err)

	revision, err := parse([]byte(`
basePath: /api
paths:
  /posts:
    get:
      security:
        - BearerAuth: []
      parameters:
        - name: page
          in: query
        - name: user
          in: query
          required: true
      responses:
        "200": {}
    post:
      responses:
        "201": {}
`))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"new required parameter: GET /api/posts -> query user",
		"operation now requires auth: GET /api/posts",
		"removed path: /api/users",
		"removed response code: POST /api/posts -> 400",
	}, compare(base, revision))
}

func TestParse_MissingPaths(t *testing.T) {
	_, err := parse([]byte("swagger: \"2.0\"\n"))
	assert.Error(t, err)
}

func TestLoadFile_GeneratedDocs(t *testing.T) {
	spec, err := loadFile("../../docs/swagger.yaml")
	require.NoError(t, err)

	require.Contains(t, spec, "/api/posts/{id}/like-dislike")
	assert.Contains(t, spec["/api/posts/{id}/like-dislike"], "post")
	assert.Contains(t, spec["/api/users"]["post"].Responses, "201")
	assert.Empty(t, compare(spec, spec))
}

package docs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

type swaggerDoc struct {
	Info struct {
		Description string `json:"description"`
	} `json:"info"`
	Paths               map[string]map[string]json.RawMessage `json:"paths"`
	SecurityDefinitions map[string]struct {
		Name string `json:"name"`
		In   string `json:"in"`
	} `json:"securityDefinitions"`
}

func readDoc(t *testing.T) swaggerDoc {
	t.Helper()
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc swaggerDoc
	require.NoError(t, json.Unmarshal([]byte(raw), &doc), raw)
	return doc
}

var (
	routerAnnotation   = regexp.MustCompile(`// @Router (\S+) \[(\w+)\]`)
	securityAnnotation = regexp.MustCompile(`// @Security (\w+)`)
	securityDefinition = regexp.MustCompile(`// @securityDefinitions\.apikey (\w+)`)
	descriptionLine    = regexp.MustCompile(`(?m)^// @description (.+)$`)
)

func readSources(t *testing.T, pattern string) string {
	t.Helper()
	files, err := filepath.Glob(pattern)
	require.NoError(t, err)
	require.NotEmpty(t, files, pattern)

	var b strings.Builder
	for _, file := range files {
		if strings.HasSuffix(file, "_test.go") {
			continue
		}
		data, err := os.ReadFile(file)
		require.NoError(t, err)
		b.Write(data)
	}
	return b.String()
}

func TestSwaggerDoc_MatchesHandlerAnnotations(t *testing.T) {
	doc := readDoc(t)
	handlers := readSources(t, filepath.Join("..", "internal", "handlers", "*.go"))

	routes := routerAnnotation.FindAllStringSubmatch(handlers, -1)
	require.NotEmpty(t, routes)
	for _, route := range routes {
		path, method := route[1], strings.ToLower(route[2])
		require.Contains(t, doc.Paths, path)
		assert.Contains(t, doc.Paths[path], method, "%s %s", method, path)
	}

	for _, security := range securityAnnotation.FindAllStringSubmatch(handlers, -1) {
		assert.Contains(t, doc.SecurityDefinitions, security[1])
	}
}

func TestSwaggerDoc_MatchesGeneralInfo(t *testing.T) {
	doc := readDoc(t)
	general := readSources(t, filepath.Join("..", "cmd", "main.go"))

	defined := securityDefinition.FindAllStringSubmatch(general, -1)
	require.Len(t, defined, len(doc.SecurityDefinitions))
	for _, d := range defined {
		assert.Contains(t, doc.SecurityDefinitions, d[1])
	}
	assert.Equal(t, "Authorization", doc.SecurityDefinitions["BearerAuth"].Name)
	assert.Equal(t, "X-API-Key", doc.SecurityDefinitions["MaintenanceKey"].Name)

	description := descriptionLine.FindStringSubmatch(general)
	require.NotNil(t, description)
	assert.Equal(t, description[1], doc.Info.Description)
	assert.Equal(t, description[1], SwaggerInfo.Description)
}

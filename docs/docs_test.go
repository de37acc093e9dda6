package docs

import (
	"strings"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerInfoRegistered(t *testing.T) {
	if SwaggerInfo == nil {
		t.Fatal("swagger info not initialized")
	}
	if SwaggerInfo.Title != "Cryptoboard API" {
		t.Fatalf("unexpected title %q", SwaggerInfo.Title)
	}

	doc, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	for _, path := range []string{"/api/assets", "/api/assets/{id}/series", "/api/preload", "/health"} {
		if !strings.Contains(doc, `"`+path+`"`) {
			t.Errorf("expected %s in swagger doc", path)
		}
	}
}

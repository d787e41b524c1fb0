package handler

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const maxBodySize = 1 << 20

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	columnInputSchema = mustCompile("column_input.json")
	taskInputSchema   = mustCompile("task_input.json")
	columnOrderSchema = mustCompile("column_order.json")
	taskOrderSchema   = mustCompile("task_order.json")
)

var (
	errBadRequest = errors.New("bad request")
	errEmptyBody  = fmt.Errorf("%w: empty request body", errBadRequest)
)

func mustCompile(name string) *jsonschema.Schema {
	data, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(err)
	}
	url := "https://kanban-board.local/schemas/" + name

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		panic(fmt.Sprintf("schema %s: %v", name, err))
	}
	return compiler.MustCompile(url)
}

// decodeBody validates the request body against schema before decoding it
// into dst. Every failure wraps errBadRequest.
func decodeBody(w http.ResponseWriter, r *http.Request, schema *jsonschema.Schema, dst any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return errEmptyBody
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: invalid json: %v", errBadRequest, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s", errBadRequest, describe(err))
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: invalid json: %v", errBadRequest, err)
	}
	return nil
}

func describe(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	var msgs []string
	collect(ve, &msgs)
	return strings.Join(msgs, "; ")
}

func collect(ve *jsonschema.ValidationError, msgs *[]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*msgs = append(*msgs, loc+": "+ve.Message)
		return
	}
	for _, cause := range ve.Causes {
		collect(cause, msgs)
	}
}

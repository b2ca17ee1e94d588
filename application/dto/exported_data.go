// Package dto holds the wire documents exchanged with clients and their
// conversion to domain types.
package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/makkenno/ittasu/domain/core/entities"
	"github.com/makkenno/ittasu/domain/core/valueobjects"
	pkgerrors "github.com/makkenno/ittasu/pkg/errors"
	"github.com/makkenno/ittasu/pkg/utils"
)

// ExportedDataDocument mirrors the transfer JSON. Pointer fields let
// validation tell a missing key from a zero value.
type ExportedDataDocument struct {
	Version *float64           `json:"version" validate:"required"`
	Nodes   []TaskNodeDocument `json:"nodes" validate:"required,dive"`
	Edges   []TaskEdgeDocument `json:"edges" validate:"required,dive"`
}

// TaskNodeDocument is one node of an ExportedDataDocument
type TaskNodeDocument struct {
	ID          *string           `json:"id" validate:"required"`
	Title       *string           `json:"title" validate:"required"`
	Memo        *string           `json:"memo" validate:"required"`
	Completed   *bool             `json:"completed" validate:"required"`
	Position    *PositionDocument `json:"position" validate:"required"`
	ParentID    Nullable          `json:"parentId"`
	CreatedAt   *string           `json:"createdAt" validate:"required,timestamp"`
	UpdatedAt   *string           `json:"updatedAt" validate:"required,timestamp"`
	CompletedAt Nullable          `json:"completedAt"`
}

// PositionDocument is a canvas coordinate on the wire
type PositionDocument struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

// TaskEdgeDocument is one edge of an ExportedDataDocument
type TaskEdgeDocument struct {
	ID       *string  `json:"id" validate:"required"`
	Source   *string  `json:"source" validate:"required"`
	Target   *string  `json:"target" validate:"required"`
	ParentID Nullable `json:"parentId"`
}

// Nullable is a string-or-null value whose key must be present
type Nullable struct {
	Present bool
	Value   *string
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Nullable) UnmarshalJSON(data []byte) error {
	n.Present = true
	n.Value = nil
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// rawDocument defers array elements so decode errors can name their index
type rawDocument struct {
	Version *float64          `json:"version"`
	Nodes   []json.RawMessage `json:"nodes"`
	Edges   []json.RawMessage `json:"edges"`
}

// DecodeExportedData parses and validates a transfer document. Malformed
// JSON, wrong value types and missing fields all surface as validation
// errors naming the offending field path.
func DecodeExportedData(data []byte) (entities.ExportedData, error) {
	var raw rawDocument
	if err := json.Unmarshal(bytes.TrimSpace(data), &raw); err != nil {
		return entities.ExportedData{}, jsonError("", err)
	}

	doc := ExportedDataDocument{Version: raw.Version}
	if raw.Nodes != nil {
		doc.Nodes = make([]TaskNodeDocument, len(raw.Nodes))
		for i, element := range raw.Nodes {
			if err := json.Unmarshal(element, &doc.Nodes[i]); err != nil {
				return entities.ExportedData{}, jsonError(fmt.Sprintf("nodes[%d]", i), err)
			}
		}
	}
	if raw.Edges != nil {
		doc.Edges = make([]TaskEdgeDocument, len(raw.Edges))
		for i, element := range raw.Edges {
			if err := json.Unmarshal(element, &doc.Edges[i]); err != nil {
				return entities.ExportedData{}, jsonError(fmt.Sprintf("edges[%d]", i), err)
			}
		}
	}
	return doc.ToDomain()
}

// ToDomain validates the document and converts it to domain types
func (d ExportedDataDocument) ToDomain() (entities.ExportedData, error) {
	if err := utils.ValidateStruct(d); err != nil {
		return entities.ExportedData{}, err
	}
	if err := d.checkNullableKeys(); err != nil {
		return entities.ExportedData{}, err
	}

	out := entities.ExportedData{
		Version: int(*d.Version),
		Nodes:   make([]entities.TaskNode, 0, len(d.Nodes)),
		Edges:   make([]entities.TaskEdge, 0, len(d.Edges)),
	}

	for i, n := range d.Nodes {
		position, err := valueobjects.NewPosition(*n.Position.X, *n.Position.Y)
		if err != nil {
			return entities.ExportedData{}, pkgerrors.NewFieldValidationError(
				fmt.Sprintf("nodes[%d].position", i), "position", err.Error())
		}
		// Validation already checked the timestamp formats
		createdAt, _ := utils.ParseTimestamp(*n.CreatedAt)
		updatedAt, _ := utils.ParseTimestamp(*n.UpdatedAt)

		node := entities.TaskNode{
			ID:        *n.ID,
			Title:     *n.Title,
			Memo:      *n.Memo,
			Completed: *n.Completed,
			ParentID:  entities.CloneScope(n.ParentID.Value),
			Position:  position,
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		}
		if n.CompletedAt.Value != nil {
			var completedAt time.Time
			completedAt, _ = utils.ParseTimestamp(*n.CompletedAt.Value)
			node.CompletedAt = &completedAt
		}
		out.Nodes = append(out.Nodes, node)
	}

	for _, e := range d.Edges {
		out.Edges = append(out.Edges, entities.NewTaskEdge(*e.ID, *e.Source, *e.Target, e.ParentID.Value))
	}

	return out, nil
}

// checkNullableKeys requires the nullable keys to be present and well formed
func (d ExportedDataDocument) checkNullableKeys() error {
	for i, n := range d.Nodes {
		if !n.ParentID.Present {
			return missingKey(fmt.Sprintf("nodes[%d].parentId", i))
		}
		if !n.CompletedAt.Present {
			return missingKey(fmt.Sprintf("nodes[%d].completedAt", i))
		}
		if v := n.CompletedAt.Value; v != nil {
			if _, err := utils.ParseTimestamp(*v); err != nil {
				field := fmt.Sprintf("nodes[%d].completedAt", i)
				return pkgerrors.NewFieldValidationError(field, "timestamp", field+" must be an ISO-8601 timestamp")
			}
		}
	}
	for i, e := range d.Edges {
		if !e.ParentID.Present {
			return missingKey(fmt.Sprintf("edges[%d].parentId", i))
		}
	}
	return nil
}

func missingKey(field string) error {
	return pkgerrors.NewFieldValidationError(field, "required", field+" is required (use null for none)")
}

// jsonError maps a decode failure to a validation error. prefix is the path
// of the array element being decoded, if any.
func jsonError(prefix string, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := joinPath(prefix, typeErr.Field)
		return pkgerrors.NewFieldValidationError(field, "type",
			fmt.Sprintf("%s must be of type %s, got %s", field, typeErr.Type.String(), typeErr.Value))
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return pkgerrors.NewFieldValidationError(joinPath(prefix, ""), "json",
			fmt.Sprintf("invalid JSON at offset %d", syntaxErr.Offset))
	}

	return pkgerrors.NewFieldValidationError(joinPath(prefix, ""), "json", "invalid JSON: "+err.Error())
}

func joinPath(prefix, field string) string {
	switch {
	case prefix == "" && field == "":
		return "$"
	case prefix == "":
		return field
	case field == "":
		return prefix
	default:
		return prefix + "." + field
	}
}

package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/rhetoriclab/rhetorica-api/internal/dto"
	"github.com/rhetoriclab/rhetorica-api/internal/handler"
)

type stubProgressService struct {
	response dto.StudentProgressResponse
}

func (s stubProgressService) StudentProgress(context.Context, uint) (dto.StudentProgressResponse, error) {
	return s.response, nil
}

func (s stubProgressService) Invalidate(context.Context, uint) {}

func TestStudentProgressContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "student_progress.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	now := time.Now().UTC()
	response := dto.StudentProgressResponse{
		Summary: dto.ProgressSummary{
			TotalAssignments: 3,
			Started:          1,
			ThesisDrafted:    1,
			Submitted:        1,
			Overdue:          1,
		},
		Assignments: []dto.AssignmentProgress{
			{
				AssignmentID: 10,
				Title:        "Speech to the Virginia Convention",
				ClassID:      4,
				DueDate:      now.Add(48 * time.Hour),
				Status:       "thesis_drafted",
				Overdue:      false,
			},
			{
				AssignmentID: 11,
				Title:        "Letter from Birmingham Jail",
				ClassID:      4,
				DueDate:      now.Add(-24 * time.Hour),
				Status:       "started",
				Overdue:      true,
			},
			{
				AssignmentID: 12,
				Title:        "A Modest Proposal",
				ClassID:      5,
				DueDate:      now.Add(-72 * time.Hour),
				Status:       "submitted",
				Overdue:      false,
			},
		},
	}

	progressHandler := handler.NewProgressHandler(stubProgressService{response: response}, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v1/students/me/progress", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(42))
		c.Locals("user_role", "student")
		return c.Next()
	})
	progressHandler.Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/me/progress", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var document any
	require.NoError(t, json.Unmarshal(body, &document))
	require.NoError(t, schema.Validate(document))
}

package todos

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dverney/todo-api/cmd/cli/config"
	"github.com/dverney/todo-api/cmd/cli/output"
	"github.com/dverney/todo-api/internal/models"
	"github.com/dverney/todo-api/internal/repo"
	"github.com/spf13/cobra"
)

// ==========================
// Init Todos
// ==========================
func InitTodos(rootCmd *cobra.Command) {

	todosCmd := &cobra.Command{
		Use:   "todos",
		Short: "Manage todos",
	}

	todosCmd.AddCommand(
		listTodosCmd(),
		createTodoCmd(),
		updateTodoCmd(),
		toggleTodoCmd(),
		deleteTodoCmd(),
		statsCmd(),
	)

	rootCmd.AddCommand(todosCmd)
}

// ==========================
// LIST
// ==========================
func listTodosCmd() *cobra.Command {
	var completed string
	var search string
	var page, pageSize int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if completed != "" {
				q.Set("completed", completed)
			}
			if search != "" {
				q.Set("search", search)
			}
			q.Set("page", strconv.Itoa(page))
			q.Set("page_size", strconv.Itoa(pageSize))

			var pageResp repo.TodoPage
			body, err := apiGet("/todos?" + q.Encode())
			if err != nil {
				return err
			}
			if err := json.Unmarshal(body, &pageResp); err != nil {
				return err
			}

			if asJSON {
				printJSON(body)
				return nil
			}

			rows := make([][]interface{}, 0, len(pageResp.Todos))
			for _, t := range pageResp.Todos {
				rows = append(rows, []interface{}{
					t.ID, t.Title, derefOrEmpty(t.Description), t.Completed,
					t.CreatedAt.Format("2006-01-02 15:04"),
				})
			}
			output.RenderTable([]string{"ID", "Title", "Description", "Done", "Created"}, rows)
			fmt.Printf("Page %d/%d (%d items)\n", pageResp.Page, pageResp.TotalPages, pageResp.TotalCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&completed, "completed", "", "Filter by completion status (true/false)")
	cmd.Flags().StringVar(&search, "search", "", "Search in title and description")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "Items per page (max 100)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON instead of a table")

	return cmd
}

// ==========================
// CREATE
// ==========================
func createTodoCmd() *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a todo",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{
				"title":       title,
				"description": description,
			}
			body, err := apiSend("POST", "/todos", payload)
			if err != nil {
				return err
			}
			printJSON(body)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Todo title")
	cmd.Flags().StringVar(&description, "description", "", "Todo description")

	return cmd
}

// ==========================
// UPDATE (PATCH)
// ==========================
func updateTodoCmd() *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Update a todo's title or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{}
			if cmd.Flags().Changed("title") {
				payload["title"] = title
			}
			if cmd.Flags().Changed("description") {
				payload["description"] = description
			}
			body, err := apiSend("PATCH", "/todos/"+args[0], payload)
			if err != nil {
				return err
			}
			printJSON(body)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")

	return cmd
}

// ==========================
// TOGGLE
// ==========================
func toggleTodoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle [id]",
		Short: "Flip a todo's completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := apiSend("PATCH", "/todos/"+args[0]+"/toggle", nil)
			if err != nil {
				return err
			}
			var todo models.Todo
			if err := json.Unmarshal(body, &todo); err != nil {
				return err
			}
			fmt.Printf("Todo %d completed=%v\n", todo.ID, todo.Completed)
			return nil
		},
	}
}

// ==========================
// DELETE
// ==========================
func deleteTodoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := apiSend("DELETE", "/todos/"+args[0], nil)
			if err != nil {
				return err
			}
			var out struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(body, &out); err != nil {
				return err
			}
			fmt.Println(out.Message)
			return nil
		},
	}
}

// ==========================
// STATS
// ==========================
func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show todo statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := apiGet("/todos/stats")
			if err != nil {
				return err
			}
			var stats repo.TodoStats
			if err := json.Unmarshal(body, &stats); err != nil {
				return err
			}
			output.RenderTable(
				[]string{"Total", "Completed", "Pending", "Completion %"},
				[][]interface{}{{stats.TotalTodos, stats.CompletedTodos, stats.PendingTodos, stats.CompletionRate}},
			)
			return nil
		},
	}
}

// ==========================
// HTTP helpers
// ==========================

func apiGet(path string) ([]byte, error) {
	return apiSend("GET", path, nil)
}

func apiSend(method, path string, payload interface{}) ([]byte, error) {
	token, err := config.ReadToken()
	if err != nil {
		return nil, fmt.Errorf("please login first")
	}

	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, config.APIURL()+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func printJSON(body []byte) {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(out.String())
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

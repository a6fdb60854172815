package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/crosspost/internal/services"
	"github.com/desertthunder/crosspost/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the backend
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if !resp.OK() {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, !cmd.Bool("json"))
	}

	return r.writeBytes(resp.Body)
}

// APIPost makes a direct POST request to the backend
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}

	r.logger.Info("POST request", "path", path)

	var jsonTest any
	if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
		return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
	}

	resp, err := r.api.Post(ctx, path, []byte(data))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	// The backend answers failed posts with a JSON body worth showing.
	if !resp.OK() && !resp.IsJSON {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		if err := r.writeJSON(resp.JSONData, true); err != nil {
			return err
		}
	} else if err := r.writeBytes(resp.Body); err != nil {
		return err
	}

	if !resp.OK() {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}
	return nil
}

// APIDump fetches the catalog endpoints and prints them as one document.
func (r *Runner) APIDump(ctx context.Context, cmd *cli.Command) error {
	pretty := cmd.Bool("pretty")

	r.logger.Info("dumping backend state")

	type DumpData struct {
		Platforms       any   `json:"platforms,omitempty"`
		CharacterLimits any   `json:"character_limits,omitempty"`
		Errors          []any `json:"errors,omitempty"`
	}

	dump := DumpData{}
	for _, endpoint := range []struct {
		path   string
		target *any
	}{
		{services.PlatformsPath, &dump.Platforms},
		{services.CharacterLimitsPath, &dump.CharacterLimits},
	} {
		resp, err := r.api.Get(ctx, endpoint.path)
		switch {
		case err != nil:
			dump.Errors = append(dump.Errors, map[string]string{"endpoint": endpoint.path, "error": err.Error()})
			r.logger.Warn("failed to fetch endpoint", "path", endpoint.path, "error", err)
		case !resp.OK():
			msg := fmt.Sprintf("status %d", resp.StatusCode)
			dump.Errors = append(dump.Errors, map[string]string{"endpoint": endpoint.path, "error": msg})
			r.logger.Warn("failed to fetch endpoint", "path", endpoint.path, "status", resp.StatusCode)
		default:
			*endpoint.target = resp.JSONData
		}
	}

	return r.writeJSON(dump, pretty)
}

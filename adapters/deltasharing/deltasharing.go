// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package deltasharing loads Delta Sharing tables as Arrow tables.
package deltasharing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	delta_sharing "github.com/magpierre/go_delta_sharing_client"

	arrowadapter "github.com/magpierre/fabview/adapters/arrow"
)

// DefaultTimeout bounds every call to the sharing server.
const DefaultTimeout = 60 * time.Second

var (
	ErrInvalidTableURL = errors.New("invalid table url")
	ErrNoFiles         = errors.New("table has no files")
	ErrFileNotFound    = errors.New("file not found in table")
)

// Options controls what Load reads.
type Options struct {
	// Timeout applies to each server call; zero means DefaultTimeout.
	Timeout time.Duration

	// FileID selects one data file; empty means the first file of the table.
	FileID string

	// Columns keeps only the named columns; empty keeps every column.
	Columns []string

	// Limit keeps the first Limit rows; zero or less keeps every row.
	Limit int64
}

// IsProfile reports whether content looks like a Delta Sharing profile.
func IsProfile(content []byte) bool {
	var profile map[string]any
	if err := json.Unmarshal(content, &profile); err != nil {
		return false
	}
	_, hasVersion := profile["shareCredentialsVersion"]
	_, hasEndpoint := profile["endpoint"]
	_, hasBearerToken := profile["bearerToken"]
	return hasVersion && hasEndpoint && hasBearerToken
}

// ParseTableURL splits a table url of the form
// <profile-file>#<share>.<schema>.<table>.
func ParseTableURL(url string) (profileFile string, table delta_sharing.Table, err error) {
	profileFile, coords, ok := strings.Cut(url, "#")
	if !ok || profileFile == "" {
		return "", table, fmt.Errorf("%w: %q: missing #<share>.<schema>.<table>", ErrInvalidTableURL, url)
	}
	parts := strings.Split(coords, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", table, fmt.Errorf("%w: %q: want <share>.<schema>.<table>", ErrInvalidTableURL, url)
	}
	table = delta_sharing.Table{Share: parts[0], Schema: parts[1], Name: parts[2]}
	return profileFile, table, nil
}

// TableName returns the share.schema.table name of a table.
func TableName(t delta_sharing.Table) string {
	return t.Share + "." + t.Schema + "." + t.Name
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// Load reads one file of a shared table. profile is the profile document, not
// its path.
func Load(ctx context.Context, profile string, table delta_sharing.Table, opts Options) (arrow.Table, error) {
	client, err := delta_sharing.NewSharingClientFromString(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create Delta Sharing client: %w", err)
	}

	listCtx, cancel := withTimeout(ctx, opts.Timeout)
	defer cancel()
	resp, err := client.ListFilesInTable(listCtx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list files of %s: %w", TableName(table), err)
	}
	if len(resp.AddFiles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, TableName(table))
	}

	fileID := resp.AddFiles[0].Id
	if opts.FileID != "" {
		fileID = ""
		for _, f := range resp.AddFiles {
			if f.Id == opts.FileID {
				fileID = f.Id
				break
			}
		}
		if fileID == "" {
			return nil, fmt.Errorf("%w: %s in %s", ErrFileNotFound, opts.FileID, TableName(table))
		}
	}

	loadCtx, cancelLoad := withTimeout(ctx, opts.Timeout)
	defer cancelLoad()
	data, err := delta_sharing.LoadArrowTable(loadCtx, client, table, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", TableName(table), err)
	}
	if len(opts.Columns) == 0 && opts.Limit <= 0 {
		return data, nil
	}

	defer data.Release()
	return arrowadapter.Project(data, opts.Columns, opts.Limit)
}

// LoadURL reads the profile file named by a table url and loads the table.
func LoadURL(ctx context.Context, url string, opts Options) (arrow.Table, error) {
	profileFile, table, err := ParseTableURL(url)
	if err != nil {
		return nil, err
	}
	profile, err := os.ReadFile(profileFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	if !IsProfile(profile) {
		return nil, fmt.Errorf("%s is not a Delta Sharing profile", profileFile)
	}
	return Load(ctx, string(profile), table, opts)
}

// ListTables lists every table the profile can read.
func ListTables(ctx context.Context, profile string, timeout time.Duration) ([]delta_sharing.Table, error) {
	client, err := delta_sharing.NewSharingClientFromString(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create Delta Sharing client: %w", err)
	}
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	tables, _, err := client.ListAllTables(ctx, 0, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list all tables: %w", err)
	}
	return tables, nil
}

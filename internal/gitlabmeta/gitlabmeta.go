// Package gitlabmeta parses the GL_* environment variables a GitLab
// server-side hook invocation sets into a typed metadata record, grounded
// on the original source's core/src/gitlab.rs / src/gitlab.rs.
package gitlabmeta

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type IDKind int

const (
	IDKindUser IDKind = iota
	IDKindKey
)

// ID is GL_ID parsed as either "user-<n>" or "key-<n>".
type ID struct {
	Kind IDKind
	Num  uint64
}

type RepositoryKind int

const (
	RepositoryKindProject RepositoryKind = iota
)

// Repository is GL_REPOSITORY parsed as "project-<n>".
type Repository struct {
	Kind RepositoryKind
	Num  uint64
}

type Protocol int

const (
	ProtocolHTTP Protocol = iota
	ProtocolSSH
	ProtocolWeb
)

func (p Protocol) String() string {
	switch p {
	case ProtocolHTTP:
		return "http"
	case ProtocolSSH:
		return "ssh"
	case ProtocolWeb:
		return "web"
	default:
		return "unknown"
	}
}

// Metadata is the GitLab arm of the webhook envelope's Metadata field.
// It is populated only when all five GL_* variables are present
// (spec.md §6) — any one missing or malformed means no metadata at all.
type Metadata struct {
	ID          ID
	ProjectPath string
	Protocol    Protocol
	Repository  Repository
	Username    string
}

func parseID(s string) (ID, bool) {
	if suffix, ok := strings.CutPrefix(s, "user-"); ok {
		n, err := strconv.ParseUint(suffix, 10, 64)
		if err != nil {
			return ID{}, false
		}
		return ID{Kind: IDKindUser, Num: n}, true
	}
	if suffix, ok := strings.CutPrefix(s, "key-"); ok {
		n, err := strconv.ParseUint(suffix, 10, 64)
		if err != nil {
			return ID{}, false
		}
		return ID{Kind: IDKindKey, Num: n}, true
	}
	return ID{}, false
}

func parseProtocol(s string) (Protocol, bool) {
	switch s {
	case "http":
		return ProtocolHTTP, true
	case "ssh":
		return ProtocolSSH, true
	case "web":
		return ProtocolWeb, true
	default:
		return 0, false
	}
}

func parseRepository(s string) (Repository, bool) {
	suffix, ok := strings.CutPrefix(s, "project-")
	if !ok {
		return Repository{}, false
	}
	n, err := strconv.ParseUint(suffix, 10, 64)
	if err != nil {
		return Repository{}, false
	}
	return Repository{Kind: RepositoryKindProject, Num: n}, true
}

// FromEnviron builds Metadata from the process environment, returning
// false when any of the five required variables is absent or malformed.
func FromEnviron() (Metadata, bool) {
	id, ok := parseID(os.Getenv("GL_ID"))
	if !ok {
		return Metadata{}, false
	}
	projectPath, ok := os.LookupEnv("GL_PROJECT_PATH")
	if !ok {
		return Metadata{}, false
	}
	protocol, ok := parseProtocol(os.Getenv("GL_PROTOCOL"))
	if !ok {
		return Metadata{}, false
	}
	repository, ok := parseRepository(os.Getenv("GL_REPOSITORY"))
	if !ok {
		return Metadata{}, false
	}
	username, ok := os.LookupEnv("GL_USERNAME")
	if !ok {
		return Metadata{}, false
	}
	return Metadata{
		ID:          id,
		ProjectPath: projectPath,
		Protocol:    protocol,
		Repository:  repository,
		Username:    username,
	}, true
}

// IDString and RepositoryString render GL_ID/GL_REPOSITORY back to their
// wire prefix-id form, used by the webhook envelope's metadata field.
func (m Metadata) IDString() string {
	switch m.ID.Kind {
	case IDKindUser:
		return fmt.Sprintf("user-%d", m.ID.Num)
	default:
		return fmt.Sprintf("key-%d", m.ID.Num)
	}
}

func (m Metadata) RepositoryString() string {
	return fmt.Sprintf("project-%d", m.Repository.Num)
}

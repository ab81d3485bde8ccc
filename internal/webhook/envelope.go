package webhook

import (
	"context"
	"time"

	"github.com/antgroup/refhook/internal/change"
	"github.com/antgroup/refhook/internal/gitlabmeta"
)

// commitLogWire is the webhook envelope's JSON shape for one commit log
// entry (spec.md §6's "log":[...]).
type commitLogWire struct {
	Hash          string    `json:"hash"`
	Parents       []string  `json:"parents"`
	Author        string    `json:"author"`
	AuthorDate    time.Time `json:"author-date"`
	Committer     string    `json:"committer"`
	CommitterDate time.Time `json:"committer-date"`
	SignedByKeyID string    `json:"signed-by-key-id,omitempty"`
	Message       string    `json:"message"`
}

func wireLog(entries []change.CommitLogEntry) []commitLogWire {
	out := make([]commitLogWire, len(entries))
	for i, e := range entries {
		out[i] = commitLogWire{
			Hash:          e.Hash,
			Parents:       e.Parents,
			Author:        e.Author,
			AuthorDate:    e.AuthorDate,
			Committer:     e.Committer,
			CommitterDate: e.CommitterDate,
			SignedByKeyID: e.SignedByKeyID,
			Message:       e.Message,
		}
	}
	return out
}

// changeWire is the union of the three per-kind shapes spec.md §6 defines
// for a Change; the fields that don't apply to a given "type" are omitted.
type changeWire struct {
	Type      string          `json:"type"`
	Name      string          `json:"name"`
	Commit    string          `json:"commit,omitempty"`
	OldCommit string          `json:"old-commit,omitempty"`
	NewCommit string          `json:"new-commit,omitempty"`
	MergeBase string          `json:"merge-base,omitempty"`
	Force     *bool           `json:"force,omitempty"`
	Patch     string          `json:"patch,omitempty"`
	Log       []commitLogWire `json:"log,omitempty"`
}

func buildChangeWire(ctx context.Context, rc *change.RefChange) changeWire {
	switch rc.Kind {
	case change.KindAdd:
		patch, _ := rc.Facts.Patch(ctx)
		return changeWire{Type: "add", Name: rc.Name, Commit: rc.Commit, Patch: patch, Log: wireLog(rc.Facts.Log(ctx))}
	case change.KindRemove:
		return changeWire{Type: "remove", Name: rc.Name, Commit: rc.Commit}
	default:
		force := rc.Force
		patch, _ := rc.Facts.Patch(ctx)
		return changeWire{
			Type:      "update",
			Name:      rc.Name,
			OldCommit: rc.OldCommit,
			NewCommit: rc.NewCommit,
			MergeBase: rc.MergeBase,
			Force:     &force,
			Patch:     patch,
			Log:       wireLog(rc.Facts.Log(ctx)),
		}
	}
}

type nonceWire struct {
	Kind         string `json:"kind"`
	Nonce        string `json:"nonce,omitempty"`
	StaleSeconds uint32 `json:"stale-seconds,omitempty"`
}

func nonceKindName(k NonceKind) string {
	switch k {
	case NonceUnsolicited:
		return "unsolicited"
	case NonceBad:
		return "bad"
	case NonceOK:
		return "ok"
	case NonceSlop:
		return "slop"
	default:
		return "missing"
	}
}

func signatureStatusName(s SignatureStatus) string {
	switch s {
	case StatusGood:
		return "good"
	case StatusBad:
		return "bad"
	case StatusUnknownValidity:
		return "unknown-validity"
	case StatusExpired:
		return "expired"
	case StatusExpiredKey:
		return "expired-key"
	case StatusRevokedKey:
		return "revoked-key"
	case StatusCannotCheck:
		return "cannot-check"
	default:
		return "no-signature"
	}
}

type signatureWire struct {
	Certificate string    `json:"certificate"`
	Signer      string    `json:"signer"`
	Key         string    `json:"key"`
	Status      string    `json:"status"`
	Nonce       nonceWire `json:"nonce"`
}

func buildSignatureWire(sig PushSignature) *signatureWire {
	return &signatureWire{
		Certificate: sig.Certificate,
		Signer:      sig.Signer,
		Key:         sig.Key,
		Status:      signatureStatusName(sig.Status),
		Nonce: nonceWire{
			Kind:         nonceKindName(sig.Nonce.Kind),
			Nonce:        sig.Nonce.Nonce,
			StaleSeconds: sig.Nonce.StaleSeconds,
		},
	}
}

// gitlabMetadataWire is the "GitLab" arm of the tagged Metadata variant.
type gitlabMetadataWire struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	ProjectPath string `json:"project-path"`
	Protocol    string `json:"protocol"`
	Repository  string `json:"repository"`
	Username    string `json:"username"`
}

func buildMetadataWire(meta gitlabmeta.Metadata, ok bool) any {
	if !ok {
		return map[string]string{"type": "none"}
	}
	return gitlabMetadataWire{
		Type:        "gitlab",
		ID:          meta.IDString(),
		ProjectPath: meta.ProjectPath,
		Protocol:    meta.Protocol.String(),
		Repository:  meta.RepositoryString(),
		Username:    meta.Username,
	}
}

// envelope is the webhook request body described in spec.md §6.
type envelope struct {
	Version       string         `json:"version"`
	DefaultBranch string         `json:"default-branch"`
	Config        any            `json:"config"`
	Changes       []changeWire   `json:"changes"`
	PushOptions   []string       `json:"push-options"`
	Signature     *signatureWire `json:"signature,omitempty"`
	Metadata      any            `json:"metadata"`
}

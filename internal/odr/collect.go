package odr

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/oxhq/cppscan/internal/cxxtoken"
	"github.com/oxhq/cppscan/internal/symbols"
)

// CollectClassRecords builds one ClassRecord per class/struct/union
// definition db resolved for one translation unit, hashing each
// definition's body token text so Violations can later tell two TUs'
// observations of the same class name apart.
func CollectClassRecords(db *symbols.Database, tokens *cxxtoken.List) []ClassRecord {
	file := tokens.File()
	var out []ClassRecord

	for i := 0; ; i++ {
		scope := db.Scope(symbols.ScopeID(i))
		if scope == nil || (i > 0 && scope.ID != symbols.ScopeID(i)) {
			break
		}
		if !isClassLike(scope.Kind) {
			continue
		}
		if scope.ClassName == "" || scope.BodyStart == nil || scope.BodyEnd == nil {
			continue
		}

		out = append(out, ClassRecord{
			ID:              uuid.NewString(),
			TranslationUnit: file,
			ClassName:       scope.ClassName,
			File:            file,
			Line:            scope.BodyStart.Line(),
			Column:          scope.BodyStart.Column(),
			ContentHash:     hashBody(scope.BodyStart, scope.BodyEnd),
			Members:         memberSummary(db, scope),
		})
	}
	return out
}

// memberSummary renders a class scope's member variables as a JSON
// array, so a reported one-definition-rule violation can point at
// which fields actually changed instead of only reporting a hash
// mismatch.
func memberSummary(db *symbols.Database, scope *symbols.Scope) []byte {
	members := make([]Member, 0, len(scope.Variables))
	for _, vid := range scope.Variables {
		v := db.Variable(vid)
		if v.Kind != symbols.VarMember || v.NameToken == nil {
			continue
		}
		members = append(members, Member{Name: v.NameToken.Str(), Type: typeText(v.TypeStart, v.TypeEnd)})
	}
	data, err := json.Marshal(members)
	if err != nil {
		return nil
	}
	return data
}

func typeText(start, end *cxxtoken.Token) string {
	if start == nil {
		return ""
	}
	var sb strings.Builder
	for t := start; t != nil; t = t.Next() {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Str())
		if t == end {
			break
		}
	}
	return sb.String()
}

func isClassLike(k symbols.ScopeKind) bool {
	return k == symbols.ScopeClass || k == symbols.ScopeStruct || k == symbols.ScopeUnion
}

// hashBody digests the token text from start to end (inclusive),
// separating tokens with a NUL byte so "int ab" and "inta b" never
// collide. This is a structural hash of the class body, not of the
// original source bytes, so whitespace/comment-only edits do not count
// as an ODR violation.
func hashBody(start, end *cxxtoken.Token) string {
	var sb strings.Builder
	for t := start; t != nil; t = t.Next() {
		sb.WriteString(t.Str())
		sb.WriteByte(0)
		if t == end {
			break
		}
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

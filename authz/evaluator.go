package authz

// PostAccess is the slice of a post the evaluator needs: who wrote it, which
// team the author currently belongs to, and the post's permission matrix.
// AuthorTeamID must be the author's current team, read at evaluation time.
type PostAccess struct {
	AuthorID     string
	AuthorTeamID string
	Matrix       Matrix
}

// EffectiveAccess computes the single access level that applies to identity
// for this post. Precedence, most specific first: author > team >
// authenticated > public. Exactly one branch applies per (identity, post)
// pair; a teammate of the author is never also evaluated under
// "authenticated", and the author is never evaluated under "team" even though
// the author trivially team-matches themselves.
//
// Admin identities bypass the matrix entirely. Pure function of its inputs.
func EffectiveAccess(identity Identity, post PostAccess) AccessLevel {
	if identity.Admin {
		return AccessEdit
	}
	level := post.Matrix[audienceCategory(identity, post)]
	if !level.Valid() {
		return AccessNone
	}
	return level
}

// audienceCategory resolves which single category governs identity for this
// post.
func audienceCategory(identity Identity, post PostAccess) Category {
	switch {
	case !identity.Authenticated:
		return CategoryPublic
	case identity.UserID == post.AuthorID:
		return CategoryAuthor
	case identity.TeamID != "" && identity.TeamID == post.AuthorTeamID:
		return CategoryTeam
	default:
		return CategoryAuthenticated
	}
}

// CanRead reports whether identity may see the post at all. It is the single
// predicate behind both object retrieval and list visibility filtering.
func CanRead(identity Identity, post PostAccess) bool {
	return EffectiveAccess(identity, post).AtLeast(AccessRead)
}

// CanEditPost reports whether identity may update the post's fields and
// replace its matrix.
func CanEditPost(identity Identity, post PostAccess) bool {
	return identity.Admin || EffectiveAccess(identity, post) == AccessEdit
}

// CanDeletePost reports whether identity may delete the post. Deletion is
// restricted to the author (holding edit access) or an admin; team or
// authenticated edit access grants update rights but never delete rights.
func CanDeletePost(identity Identity, post PostAccess) bool {
	if identity.Admin {
		return true
	}
	return identity.Authenticated &&
		identity.UserID == post.AuthorID &&
		EffectiveAccess(identity, post) == AccessEdit
}

// CanReadForEngagement reports whether identity may like or comment on the
// post. Engagement only needs read visibility, a deliberately weaker rule
// than post editing.
func CanReadForEngagement(identity Identity, post PostAccess) bool {
	return identity.Admin || CanRead(identity, post)
}

// VisiblePosts filters candidates down to the posts identity can read,
// preserving input order. Admins see the unfiltered input. access maps each
// candidate to its authorship and matrix; the candidate's own relationship to
// the requester is resolved per element, so authorship of one post never
// bleeds into the evaluation of another.
func VisiblePosts[T any](identity Identity, candidates []T, access func(T) PostAccess) []T {
	if identity.Admin {
		return candidates
	}
	visible := make([]T, 0, len(candidates))
	for _, candidate := range candidates {
		if CanRead(identity, access(candidate)) {
			visible = append(visible, candidate)
		}
	}
	return visible
}

package intent

import (
	"regexp"
	"strings"

	"github.com/doeshing/gitflow-ai/internal/domain"
)

const namePattern = `([A-Za-z0-9][A-Za-z0-9._/-]*)`

// stopwords can never be branch or ref names; a candidate that hits one is
// skipped and the next pattern is tried.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "new": true, "my": true, "our": true, "your": true,
	"this": true, "that": true, "it": true, "to": true, "from": true, "into": true, "onto": true,
	"on": true, "of": true, "in": true, "for": true, "with": true, "and": true, "or": true,
	"but": true, "branch": true, "branches": true, "called": true, "named": true, "current": true,
	"another": true, "other": true, "some": true, "please": true, "me": true, "changes": true,
	"change": true, "local": true, "remote": true, "back": true, "latest": true, "last": true,
	"all": true, "everything": true, "top": true, "is": true, "i": true, "want": true,
	"should": true, "can": true, "how": true, "do": true, "be": true, "up": true, "over": true,
	"now": true, "here": true, "there": true, "them": true, "one": true, "again": true,
}

var (
	calledRE = regexp.MustCompile("(?i)\\b(?:called|named)\\s+[\"'`]?" + namePattern)
	branchRE = regexp.MustCompile("(?i)\\bbranch\\s+[\"'`]?" + namePattern)
	suffixRE = regexp.MustCompile("(?i)\\b" + namePattern + "\\s+branch\\b")

	createFlagRE = regexp.MustCompile(`(?i)\b(?:checkout\s+-b|switch\s+-c)\s+` + namePattern)
	createRE     = regexp.MustCompile(`(?i)\b(?:create|make|start|new)\s+(?:a\s+)?(?:new\s+)?` + namePattern + `\s+branch\b`)

	switchRE = regexp.MustCompile("(?i)\\b(?:switch|checkout|check out|change|go|move|jump)\\s+(?:back\\s+)?(?:to\\s+)?(?:the\\s+)?(?:branch\\s+)?[\"'`]?" + namePattern)

	deleteRE      = regexp.MustCompile("(?i)\\b(?:delete|remove|drop)\\s+(?:the\\s+)?(?:local\\s+|remote\\s+)?(?:branch\\s+)?[\"'`]?" + namePattern)
	deleteForceRE = regexp.MustCompile(`(?i:\bforce\b|--force|\bunmerged\b|\bnot (?:been )?merged\b)|\s-D\b`)

	mergeRE     = regexp.MustCompile("(?i)\\bmerge\\s+(?:in\\s+)?(?:the\\s+)?(?:branch\\s+)?(?:from\\s+)?[\"'`]?" + namePattern)
	mergeFromRE = regexp.MustCompile(`(?i)\bfrom\s+(?:the\s+)?(?:branch\s+)?` + namePattern)
	mergeIntoRE = regexp.MustCompile(`(?i)\b` + namePattern + `\s+(?:branch\s+)?into\b`)

	rebaseRE   = regexp.MustCompile(`(?i)\brebase\s+(?:on(?:to)?\s+)?(?:the\s+)?(?:latest\s+)?(?:branch\s+)?` + namePattern)
	rebaseOnRE = regexp.MustCompile(`(?i)\b(?:onto|on top of|on)\s+(?:the\s+)?(?:latest\s+)?` + namePattern)

	messageREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:message|msg|-m)\s*[:=]?\s*["'“]([^"'”]+)["'”]`),
		regexp.MustCompile(`(?i)\b(?:saying|that says|with)\s+["'“]([^"'”]+)["'”]`),
		regexp.MustCompile(`(?i)\bcommit\b.*?["“]([^"”]+)["”]`),
	}

	pathRE = regexp.MustCompile(`(?:^|\s)["'` + "`" + `]?((?:[\w.-]+/)*[\w-]+\.[A-Za-z0-9]{1,8})\b`)
)

// firstName returns the first candidate across patterns that is not a stopword.
func firstName(utterance string, patterns ...*regexp.Regexp) string {
	for _, pattern := range patterns {
		for _, match := range pattern.FindAllStringSubmatch(utterance, -1) {
			if name := cleanName(match[1]); name != "" {
				return name
			}
		}
	}
	return ""
}

func cleanName(raw string) string {
	name := strings.TrimRight(raw, ".,;:!?/")
	if name == "" || stopwords[strings.ToLower(name)] {
		return ""
	}
	if strings.HasPrefix(name, "-") || strings.Contains(name, "..") {
		return ""
	}
	return name
}

func params(pairs ...string) map[string]string {
	out := map[string]string{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			out[pairs[i]] = pairs[i+1]
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func extractCreateBranch(utterance string, _ domain.RepositoryState) map[string]string {
	return params(domain.ParamBranch, firstName(utterance, calledRE, createFlagRE, branchRE, createRE))
}

func extractSwitchBranch(utterance string, _ domain.RepositoryState) map[string]string {
	return params(domain.ParamBranch, firstName(utterance, calledRE, switchRE, branchRE, suffixRE))
}

func extractDeleteBranch(utterance string, _ domain.RepositoryState) map[string]string {
	out := params(domain.ParamBranch, firstName(utterance, calledRE, deleteRE, branchRE, suffixRE))
	if deleteForceRE.MatchString(utterance) {
		if out == nil {
			out = map[string]string{}
		}
		out[domain.ParamForce] = "true"
	}
	return out
}

func extractMergeTarget(utterance string, _ domain.RepositoryState) map[string]string {
	return params(domain.ParamTarget, firstName(utterance, mergeRE, mergeFromRE, mergeIntoRE))
}

func extractRebaseTarget(utterance string, _ domain.RepositoryState) map[string]string {
	return params(domain.ParamTarget, firstName(utterance, rebaseRE, rebaseOnRE))
}

func extractMessage(utterance string, _ domain.RepositoryState) map[string]string {
	for _, pattern := range messageREs {
		if match := pattern.FindStringSubmatch(utterance); match != nil {
			if message := strings.TrimSpace(match[1]); message != "" {
				return params(domain.ParamMessage, message)
			}
		}
	}
	return nil
}

// extractRemote only reports remotes the repository actually has.
func extractRemote(utterance string, state domain.RepositoryState) map[string]string {
	tokens := map[string]bool{}
	for _, token := range strings.Fields(strings.ToLower(utterance)) {
		tokens[strings.Trim(token, ".,;:!?\"'`")] = true
	}
	for _, remote := range state.Remotes {
		if tokens[strings.ToLower(remote.Name)] {
			return params(domain.ParamRemote, remote.Name)
		}
	}
	return nil
}

func extractPathTarget(utterance string, _ domain.RepositoryState) map[string]string {
	for _, match := range pathRE.FindAllStringSubmatch(utterance, -1) {
		candidate := match[1]
		if strings.Contains(candidate, "://") || stopwords[strings.ToLower(candidate)] {
			continue
		}
		return params(domain.ParamTarget, candidate)
	}
	return nil
}

// Package health provides the workspace fitness check.
//
// # Checks
//
// A fitness evaluation runs five independent checks over the current
// filesystem and network state:
//
//  1. Essential files: required scripts exist under the scripts directory.
//  2. Artifact integrity: every knowledge book has its page index companion.
//  3. Document governance: every decision record carries a lifecycle status.
//  4. Dependencies: required capabilities resolve in the local environment.
//  5. Connectivity: configured external services answer an identity call.
//
// Each check collects facts and returns a typed result. Nothing is cached
// between evaluations; running twice over an unchanged workspace yields the
// same results.
//
// # Verdict
//
// The five outcomes fold into one ordinal verdict through a fixed table:
//
//	all five pass                           -> excellent
//	files, dependencies, no unknown status  -> good
//	files, dependencies                     -> functional
//	anything else                           -> critical
//
// Infrastructure (files and dependencies) gates every grade above critical.
// Connectivity is reported but never decides the grade on its own, since the
// external services may be legitimately unconfigured.
//
// # Status classification
//
// Decision records are written by hand in English or Japanese, so their
// status markers vary. StatusClassifier holds an ordered rule table; each
// rule implies one lifecycle tag and the first matching rule wins:
//
//	Status: Accepted
//	ステータス: Accepted
//	## ステータス
//	Accepted
//	**ステータス**: Accepted
//	Accepted（2024-01-01 承認）
//	ステータス ... 承認済み
//
// Proposed rules are evaluated before Accepted, Accepted before Deprecated,
// Deprecated before Superseded. A record matching none is Unknown.
//
// # Failure model
//
// Unreadable files are skipped, undecodable bytes are replaced, missing or
// placeholder credentials yield NotConfigured, and any transport failure
// yields Disconnected. No check returns an error to the evaluator; the worst
// outcome is a critical verdict with itemized findings.
package health

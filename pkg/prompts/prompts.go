// Package prompts holds the fixed templates fed to the completion model
// during the compliance workflow.
package prompts

import "fmt"

const decompositionTemplate = `You are a compliance analyst. Decompose the following design scheme fragment into a list of discrete, independently checkable claims.

Scheme fragment:
%s

Respond ONLY with a JSON array of strings, one claim per entry, no commentary. Example: ["claim one", "claim two"]`

const checkTemplate = `You are a compliance auditor. Judge whether the design scheme fragment below complies with the cited standard passages. Point out every violation or missing requirement you find; if the fragment is fully compliant, say so briefly.

Scheme fragment:
%s

Relevant standard passages:
%s

Verdict:`

const summaryTemplate = `The following compliance findings were collected chunk by chunk from one design document. Condense them into a single coherent report: merge duplicate findings, keep every distinct violation, and order by severity.

Findings:
%s

Summary report:`

const queryTemplate = `Answer the question using only the cited standard passages. If the passages do not contain the answer, say that the standard does not cover it.

Standard passages:
%s

Question: %s

Answer:`

// Decomposition asks the model to break a scheme chunk into checkable claims.
func Decomposition(scheme string) string {
	return fmt.Sprintf(decompositionTemplate, scheme)
}

// Check asks the model to judge a scheme chunk against standard passages.
func Check(scheme, standard string) string {
	return fmt.Sprintf(checkTemplate, scheme, standard)
}

// Summary asks the model to condense the accumulated per-chunk findings.
func Summary(problems string) string {
	return fmt.Sprintf(summaryTemplate, problems)
}

// Query asks the model to answer a free-text question from standard passages.
func Query(standard, question string) string {
	return fmt.Sprintf(queryTemplate, standard, question)
}

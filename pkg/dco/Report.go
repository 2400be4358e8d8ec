/*
 * Copyright (c) 2024. Devtron Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package dco

import (
	"strings"
	"text/template"
)

const successSummary = "All commits are signed off, or exempt from the check. Thanks!"

// failureSummaryTemplate renders the markdown shown on the pull request when
// one or more commits fail the check. It lists the failing commits with their
// errors and tells the author how to fix them, either by amending the last
// commit or by rebasing the whole branch with sign-offs.
var failureSummaryTemplate = template.Must(template.New("failureSummary").
	Funcs(template.FuncMap{
		"shortSha":      shortSha,
		"commitSubject": commitSubject,
	}).Parse(
	`Some commits are incorrectly signed off. The [Developer Certificate of Origin](https://developercertificate.org) requires every commit to carry a ` + "`Signed-off-by`" + ` line matching the commit author or committer.

## Commits with errors

{{range .Commits}}{{if .Errors}}- {{if .Commit.HtmlUrl}}[` + "`{{shortSha .Commit.Sha}}`" + `]({{.Commit.HtmlUrl}}){{else}}` + "`{{shortSha .Commit.Sha}}`" + `{{end}} {{commitSubject .Commit.Message}}
{{range .Errors}}  - {{.}}
{{end}}{{end}}{{end}}
## How to fix it

{{if .OnlyLastCommitContainsErrors}}Only the most recent commit needs a sign-off. Amend it and force push the branch:

` + "```shell\ngit commit --amend --signoff\ngit push --force-with-lease origin {{.HeadRef}}\n```" + `
{{else}}Sign off all the commits of the branch with an interactive rebase, then force push it:

` + "```shell\ngit rebase --signoff HEAD~{{len .Commits}}\ngit push --force-with-lease origin {{.HeadRef}}\n```" + `
{{end}}
Alternatively, a commit can be remediated afterwards by adding a new commit stating ` + "`I, <name> <<email>>, hereby add my Signed-off-by to this commit: <sha>`" + ` to the branch, when the repository allows remediation commits.
`))

// RenderSummary produces the markdown body of the check run for the output
// provided. It never fails: rendering problems degrade to the plain failure
// heading.
func RenderSummary(output *CheckOutput) string {
	if output.NumCommitsWithErrors == 0 {
		return successSummary
	}
	var builder strings.Builder
	if err := failureSummaryTemplate.Execute(&builder, output); err != nil {
		return "Some commits are incorrectly signed off."
	}
	return builder.String()
}

func shortSha(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// commitSubject returns the first line of the commit message.
func commitSubject(message string) string {
	subject, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(subject)
}

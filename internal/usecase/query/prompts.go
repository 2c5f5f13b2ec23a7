package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/raseed-cloud/raseed/internal/domain/receipt"
)

const filterPromptTemplate = `You are an assistant that helps generate structured filters for an expense tracking app.

The "receipts" collection has documents with this schema:
{
  "user_id": string (email of the user),
  "vendor_name": string,
  "bill_category": string,
  "items": [string],
  "total_amount": number,
  "date": string (YYYY-MM-DD format, e.g. "2025-01-15")
}

Main categories: %s.

CRITICAL SECURITY RULE:
- The user_id MUST ALWAYS be included in the filter for data privacy and security
- user_id is the email of the authenticated user: %s
- Never generate filters without the user_id field

IMPORTANT RULES:
1. MANDATORY: Always include "user_id": "%s" in every filter
2. Today's date is %s; for date ranges use STATIC date strings in YYYY-MM-DD format only
3. Do NOT use any function calls or expressions, only plain literal values
4. Supported comparison operators: $gte, $lte, $gt, $lt, $eq, $ne, $in, $nin
5. Return ONLY a single JSON object with simple values

Examples of VALID filters (notice user_id is ALWAYS present):
{"user_id": "%s", "bill_category": "Grocery"}
{"user_id": "%s", "total_amount": {"$gte": 100}}
{"user_id": "%s", "date": {"$gte": "2025-07-01", "$lte": "2025-07-31"}}
{"user_id": "%s", "bill_category": {"$in": ["Food", "Grocery"]}}

User email (MUST be in filter): %s
Question: %s

Respond ONLY with the JSON object for the filter. The user_id field is MANDATORY.`

// filterPrompt builds the synthesis prompt for one question.
func filterPrompt(identity, question string, today time.Time) string {
	cats := strings.Join(receipt.Categories(), ", ")
	day := today.Format(receipt.DateLayout)
	return fmt.Sprintf(filterPromptTemplate,
		cats, identity, identity, day,
		identity, identity, identity, identity,
		identity, question)
}

const answerPromptTemplate = `Here is the filtered expense data in JSON:
%s

Answer this question based only on the above data:
%s

Provide a clear, concise, and user-friendly answer. If no data is found, mention that no matching expenses were found for the query.`

// answerPrompt builds the answer-synthesis prompt over an executed result set.
func answerPrompt(receiptsJSON []byte, question string) string {
	return fmt.Sprintf(answerPromptTemplate, receiptsJSON, question)
}

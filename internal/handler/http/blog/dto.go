// Package blog provides HTTP handlers for the generation endpoint and
// the article pages.
package blog

// GenerateRequest is the JSON body accepted by the generation endpoint.
// Link is the only field; anything else is rejected.
type GenerateRequest struct {
	Link string `json:"link" example:"https://www.youtube.com/watch?v=dQw4w9WgXcQ"`
}

// GenerateResponse carries the generated article HTML.
type GenerateResponse struct {
	Content string `json:"content" example:"<h1><b><u>Video Title</u></b></h1><p>...</p>"`
}

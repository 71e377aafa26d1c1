package synthesizer

import "fmt"

// buildPrompt constructs the article-generation prompt. The instructions
// pin down the HTML shape the frontend renders directly: an <h1> title
// header, <h2> section headings, <p> paragraphs and <li> bullets, and
// no markdown bold markers.
func buildPrompt(title, transcript string) string {
	return fmt.Sprintf(
		"Based on the following transcript from a YouTube video, write a comprehensive summarised blog article.\n"+
			"Write it based on the transcript:\n\n"+
			"%s\n\n"+
			"Provide an HTML response with a section-wise bullet-point summarised blog article based on the above transcription. "+
			"Also, add the title of the video at the start as a bold header: <h1><b><u>%s</u></b></h1>. "+
			"Please avoid repeating phrases or sentences and ensure the content is clear and concise.\n\n"+
			"Use <p> tags for paragraphs, and use section headings with <b> and <h2> tags, like this: <h2><b>Section Title</b></h2>. "+
			"Bullet points should be in <li> format. "+
			"Do not use ** for bold; instead, use <b> and add breaks for new lines.\n\n",
		transcript, title)
}

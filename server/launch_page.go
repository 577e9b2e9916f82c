package server

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/1rychv/blunote-lti-chatkit/lti"
)

// launchPageTemplate is the minimal HTML shell returned to the LMS iframe.
// It injects the session payload for the ChatKit frontend and hands the
// browser over to it.
var launchPageTemplate = template.Must(template.New("launch").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>BluNote Assistant - {{.CourseName}}</title>
  <style>
    body { margin: 0; padding: 0; font-family: sans-serif; }
    #loading {
      display: flex;
      align-items: center;
      justify-content: center;
      height: 100vh;
      flex-direction: column;
    }
  </style>
</head>
<body>
  <div id="loading">
    <h2>Loading BluNote Assistant...</h2>
    <p>Course: {{.CourseName}}</p>
  </div>
  <script>
    window.__BLUNOTE_SESSION__ = {{.SessionJSON}};
    window.location.href = {{.FrontendURL}};
  </script>
</body>
</html>
`))

type launchPageData struct {
	CourseName  string
	SessionJSON template.JS
	FrontendURL string
}

// bootstrapPayload is the subset of the session the frontend needs to start.
// The session id is its handle for everything else.
type bootstrapPayload struct {
	SessionID  string   `json:"sessionId"`
	UserID     string   `json:"userId"`
	UserName   string   `json:"userName"`
	CourseID   string   `json:"courseId"`
	CourseName string   `json:"courseName"`
	Role       lti.Role `json:"role"`
}

func (s *Server) renderLaunchPage(w http.ResponseWriter, session *lti.Session) {
	payload := bootstrapPayload{
		SessionID:  session.SessionID,
		UserID:     session.UserID,
		UserName:   session.UserName,
		CourseID:   session.CourseID,
		CourseName: session.CourseName,
		Role:       session.Roles[0],
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		log.Err(err).Msg("Failed to marshal session payload")
		writeJSONError(w, http.StatusInternalServerError, "Failed to render launch page")
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	err = launchPageTemplate.Execute(w, launchPageData{
		CourseName:  session.CourseName,
		SessionJSON: template.JS(payloadJSON),
		FrontendURL: s.config.GetFrontendURL(),
	})
	if err != nil {
		log.Err(err).Msg("Failed to render launch page")
	}
}

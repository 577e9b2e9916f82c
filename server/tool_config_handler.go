package server

import (
	"net/http"
)

// ToolConfigHandler serves the tool's registration document. Platform admins
// point their LTI developer key configuration at this endpoint.
func (s *Server) ToolConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		toolURL := s.config.GetToolURL()

		writeJSON(w, http.StatusOK, map[string]any{
			"title":               "BluNote Assistant",
			"description":         "AI-powered study assistant with ChatKit interface",
			"oidc_initiation_url": toolURL + RouteLTILogin,
			"target_link_uri":     toolURL + RouteLTILaunch,
			"public_jwk_url":      toolURL + RouteLTIJWKS,
			"scopes": []string{
				"https://purl.imsglobal.org/spec/lti-ags/scope/lineitem",
				"https://purl.imsglobal.org/spec/lti-ags/scope/score",
				"https://purl.imsglobal.org/spec/lti-nrps/scope/contextmembership.readonly",
			},
			"extensions": []map[string]any{
				{
					"platform":      "canvas.instructure.com",
					"privacy_level": "public",
					"settings": map[string]any{
						"placements": []map[string]any{
							{
								"placement":       "course_navigation",
								"message_type":    "LtiResourceLinkRequest",
								"target_link_uri": toolURL + RouteLTILaunch,
								"text":            "BluNote Assistant",
								"icon_url":        toolURL + "/icon.png",
							},
						},
					},
				},
			},
		})
	}
}

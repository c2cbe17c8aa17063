package post

import "github.com/gin-gonic/gin"

// postResponse construit la représentation exposée d'un post.
// L'auteur est rendu par son username, jamais par son id.
func postResponse(p Post) gin.H {
	var image interface{}
	if p.ImageURL != "" {
		image = p.ImageURL
	}

	var grp interface{}
	if p.GroupID != nil {
		grp = *p.GroupID
	}

	return gin.H{
		"id":       p.ID,
		"author":   p.Author.Username,
		"text":     p.Text,
		"pub_date": p.PubDate,
		"image":    image,
		"group":    grp,
	}
}

func commentResponse(cm Comment) gin.H {
	return gin.H{
		"id":      cm.ID,
		"author":  cm.Author.Username,
		"post":    cm.PostID,
		"text":    cm.Text,
		"created": cm.Created,
	}
}

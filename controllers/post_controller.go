package controllers

import (
	"github.com/Govind-619/ShuttleHub/middleware"
	"github.com/Govind-619/ShuttleHub/services"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/gin-gonic/gin"
)

type PostController struct {
	posts *services.PostService
}

func NewPostController(posts *services.PostService) *PostController {
	return &PostController{posts: posts}
}

func (pc *PostController) ListPosts(c *gin.Context) {
	p := utils.NewPagination(c)
	drafts := middleware.IsAdmin(c) && queryBool(c, "include_drafts")
	posts, err := pc.posts.List(c.Request.Context(), drafts, p)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessWithPagination(c, "Posts retrieved successfully", posts, p)
}

// GetPost accepts an id or a slug; drafts are visible to admins only
func (pc *PostController) GetPost(c *gin.Context) {
	post, err := pc.posts.Get(c.Request.Context(), c.Param("id"), middleware.IsAdmin(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Post retrieved successfully", post)
}

func (pc *PostController) CreatePost(c *gin.Context) {
	var req services.PostInput
	if !utils.BindJSON(c, &req) {
		return
	}
	post, err := pc.posts.Create(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Post created successfully", post)
}

func (pc *PostController) UpdatePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req services.PostInput
	if !utils.BindJSON(c, &req) {
		return
	}
	post, err := pc.posts.Update(c.Request.Context(), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Post updated successfully", post)
}

func (pc *PostController) DeletePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := pc.posts.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Post deleted successfully", nil)
}

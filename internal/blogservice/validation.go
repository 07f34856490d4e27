package blogservice

import (
	"github.com/sushihentaime/bloglist/internal/common"
)

func validateCreateBlog(v *common.Validator, req *CreateBlogRequest) {
	v.Struct(req)
}

func validateUpdateBlog(v *common.Validator, req *UpdateBlogRequest) {
	v.Check(req.Title == nil || *req.Title != "", "title", "must not be empty")
	v.Check(req.Author == nil || *req.Author != "", "author", "must not be empty")
	v.Check(req.URL == nil || *req.URL != "", "url", "must not be empty")
	v.Check(req.Likes == nil || *req.Likes >= 0, "likes", "must be greater than or equal to 0")
}

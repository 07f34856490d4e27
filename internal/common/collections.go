package common

// Collection names shared by the services. Blogs and users reference each other by id.
const (
	BlogsCollection = "blogs"
	UsersCollection = "users"
)

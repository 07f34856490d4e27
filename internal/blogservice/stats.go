package blogservice

import "errors"

// ErrNoBlogs is returned by the author aggregations when there is nothing to aggregate.
var ErrNoBlogs = errors.New("no blogs")

type AuthorBlogs struct {
	Author string `json:"author"`
	Blogs  int    `json:"blogs"`
}

type AuthorLikes struct {
	Author string `json:"author"`
	Likes  int    `json:"likes"`
}

// Summary bundles every aggregation. Author fields are nil when there are no blogs.
type Summary struct {
	TotalLikes   int          `json:"totalLikes"`
	FavoriteBlog []Blog       `json:"favoriteBlog"`
	MostBlogs    *AuthorBlogs `json:"mostBlogs"`
	MostLikes    *AuthorLikes `json:"mostLikes"`
}

// TotalLikes sums the likes of all blogs. It is 0 for no blogs.
func TotalLikes(blogs []Blog) int {
	total := 0
	for _, b := range blogs {
		total += b.Likes
	}
	return total
}

// FavoriteBlog returns every blog with the highest like count, in input order. The result is an
// empty slice for no blogs.
func FavoriteBlog(blogs []Blog) []Blog {
	favs := []Blog{}
	for _, b := range blogs {
		switch {
		case len(favs) == 0 || b.Likes == favs[0].Likes:
			favs = append(favs, b)
		case b.Likes > favs[0].Likes:
			favs = append(favs[:0:0], b)
		}
	}
	return favs
}

// authorGroup is one author's blogs, in the order the author first appears.
type authorGroup struct {
	author string
	blogs  []Blog
}

func groupByAuthor(blogs []Blog) []authorGroup {
	index := make(map[string]int)
	var groups []authorGroup

	for _, b := range blogs {
		i, ok := index[b.Author]
		if !ok {
			i = len(groups)
			index[b.Author] = i
			groups = append(groups, authorGroup{author: b.Author})
		}
		groups[i].blogs = append(groups[i].blogs, b)
	}

	return groups
}

// MostBlogs returns the author with the most blogs. On a tie the author who appears first wins.
func MostBlogs(blogs []Blog) (AuthorBlogs, error) {
	groups := groupByAuthor(blogs)
	if len(groups) == 0 {
		return AuthorBlogs{}, ErrNoBlogs
	}

	best := AuthorBlogs{Author: groups[0].author, Blogs: len(groups[0].blogs)}
	for _, g := range groups[1:] {
		if len(g.blogs) > best.Blogs {
			best = AuthorBlogs{Author: g.author, Blogs: len(g.blogs)}
		}
	}

	return best, nil
}

// MostLikes returns the author whose blogs have the most likes in total. On a tie the author who
// appears first wins.
func MostLikes(blogs []Blog) (AuthorLikes, error) {
	groups := groupByAuthor(blogs)
	if len(groups) == 0 {
		return AuthorLikes{}, ErrNoBlogs
	}

	best := AuthorLikes{Author: groups[0].author, Likes: TotalLikes(groups[0].blogs)}
	for _, g := range groups[1:] {
		if likes := TotalLikes(g.blogs); likes > best.Likes {
			best = AuthorLikes{Author: g.author, Likes: likes}
		}
	}

	return best, nil
}

func Summarize(blogs []Blog) Summary {
	s := Summary{
		TotalLikes:   TotalLikes(blogs),
		FavoriteBlog: FavoriteBlog(blogs),
	}

	if mb, err := MostBlogs(blogs); err == nil {
		s.MostBlogs = &mb
	}
	if ml, err := MostLikes(blogs); err == nil {
		s.MostLikes = &ml
	}

	return s
}

package router

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/avanzatech/blog/blog"
	"github.com/avanzatech/blog/handlers"
	"github.com/avanzatech/blog/internal/config"
	"github.com/avanzatech/blog/services"
)

func NewGinRouter(pg *sql.DB, redis *redis.Client) *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Initialize repositories
	postRepo := blog.NewSimplePostRepository(pg)
	likeRepo := blog.NewSimpleLikeRepository(pg)
	commentRepo := blog.NewSimpleCommentRepository(pg)

	// Initialize services
	userService := services.NewUserService(pg)
	authService := services.NewAuthService(userService, redis, config.App.JWTSecret, config.App.SessionTTL)
	postService := blog.NewPostService(postRepo)
	likeService := blog.NewLikeService(postRepo, likeRepo)
	commentService := blog.NewCommentService(postRepo, commentRepo)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	authHandler := handlers.NewAuthHandler(authService)
	postHandler := handlers.NewPostHandler(postService)
	likeHandler := handlers.NewLikeHandler(likeService)
	commentHandler := handlers.NewCommentHandler(commentService)

	// Initialize middleware
	sessionAuth := handlers.NewSessionAuthMiddleware(authService)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(sessionAuth.Authenticate())
	{
		api.POST("/users", userHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", handlers.RequireAuth(), authHandler.Logout)

		// Reads run for anonymous identities too; the permission engine
		// decides per post what each identity can see.
		postRoutes := api.Group("/posts")
		{
			postRoutes.GET("", postHandler.ListPosts)
			postRoutes.GET("/:id", postHandler.GetPost)
			postRoutes.POST("", handlers.RequireAuth(), postHandler.CreatePost)
			postRoutes.PUT("/:id", handlers.RequireAuth(), postHandler.UpdatePost)
			postRoutes.DELETE("/:id", handlers.RequireAuth(), postHandler.DeletePost)
		}

		likeRoutes := api.Group("/likes")
		{
			likeRoutes.GET("", likeHandler.ListLikes)
			likeRoutes.POST("", handlers.RequireAuth(), likeHandler.CreateLike)
			likeRoutes.DELETE("/:post_id", handlers.RequireAuth(), likeHandler.DeleteLike)
		}

		commentRoutes := api.Group("/comments")
		{
			commentRoutes.GET("", commentHandler.ListComments)
			commentRoutes.POST("", handlers.RequireAuth(), commentHandler.CreateComment)
			commentRoutes.DELETE("/:id", handlers.RequireAuth(), commentHandler.DeleteComment)
		}
	}

	return r
}

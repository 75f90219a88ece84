package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/studymate/server/ai"
	"github.com/studymate/server/cache"
	"github.com/studymate/server/config"
	mw "github.com/studymate/server/middleware"
	"github.com/studymate/server/social"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Deps holds everything the HTTP layer needs. Auditor may be nil.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Cache   cache.Cache
	Social  *social.Service
	AI      *ai.Client
	Auditor mw.Auditor
	Logger  *zap.Logger
}

// NewRouter builds the gin engine with every StudyMate route. Background
// middleware goroutines stop when ctx is done.
func NewRouter(ctx context.Context, d Deps) *gin.Engine {
	cfg := d.Config

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(d.Logger), mw.Recovery(d.Logger))
	if cfg.Metrics.Enabled {
		r.Use(mw.Metrics())
	}
	if cfg.Security.RateLimitRPS > 0 {
		r.Use(mw.RateLimit(ctx, rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))
	}
	if d.Auditor != nil {
		r.Use(mw.Audit(d.Auditor))
	}

	auth := mw.Auth(cfg.Security, d.Cache)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Hello from StudyMate!"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics.Enabled {
		r.GET("/metrics", mw.IPWhitelist(cfg.Metrics.AllowedIPs), gin.WrapH(promhttp.Handler()))
	}

	// ---- Accounts ----
	authH := NewAuthHandler(d.DB, d.Cache, cfg.Security)
	r.POST("/register/", authH.Register)
	r.POST("/login/", authH.Login)
	r.POST("/logout/", authH.Logout)
	r.POST("/reset-password/", authH.ResetPassword)

	// ---- Students ----
	studentH := NewStudentHandler(d.DB)
	r.GET("/get_user_and_student_details/", auth, studentH.Details)
	r.POST("/create_student/", auth, studentH.Create)
	r.GET("/get_student/:id/", studentH.Get)
	r.PUT("/update_student/:id/", auth, studentH.Update)
	r.DELETE("/delete_student/:id/", studentH.Delete)
	r.GET("/get_all_students/", studentH.List)

	// ---- Decks & flashcards ----
	deckH := NewDeckHandler(d.DB)
	r.GET("/decks/", deckH.List)
	r.GET("/decks/student/:student_id/", deckH.ListByStudent)
	r.POST("/decks/create/", deckH.Create)
	r.PUT("/decks/update/:id/", deckH.Update)
	r.DELETE("/decks/delete/:id/", deckH.Delete)

	cardH := NewFlashcardHandler(d.DB)
	r.GET("/flashcards/", cardH.List)
	r.GET("/flashcards/deck/:deck_id/", cardH.ListByDeck)
	r.POST("/flashcards/create/", cardH.Create)
	r.PUT("/flashcards/update/:id/", cardH.Update)
	r.DELETE("/flashcards/delete/:id/", cardH.Delete)

	// ---- Friendship ----
	friendH := NewFriendshipHandler(d.DB, d.Social)
	friendG := r.Group("/friendship")
	friendG.Use(auth)
	friendG.POST("/send/", friendH.Send)
	friendG.POST("/respond/:id/", friendH.Respond)
	friendG.POST("/block/:id/", friendH.Block)
	friendG.POST("/unblock/:id/", friendH.Unblock)
	friendG.GET("/", friendH.List)
	friendG.GET("/get_blocked/", friendH.Blocked)
	friendG.DELETE("/delete/:id/", friendH.Delete)
	friendG.GET("/history/", friendH.History)

	// ---- Groups & discussions ----
	groupH := NewGroupHandler(d.DB)
	r.POST("/create_group/", groupH.Create)
	r.GET("/groups/", groupH.List)
	r.GET("/get_group_by_id/:group_id/", groupH.Get)
	r.PUT("/update_group/:group_id/", groupH.Update)
	r.DELETE("/delete_group/:group_id/", groupH.Delete)
	r.POST("/add_member/:group_id/", groupH.AddMember)
	r.DELETE("/remove_member/:group_id/", groupH.RemoveMember)
	r.GET("/group_members/:group_id/", groupH.Members)

	discH := NewDiscussionHandler(d.DB)
	r.GET("/discussions/", discH.List)
	r.POST("/create_discussion/", discH.Create)
	r.GET("/get_discussion_by_id/:id/", discH.Get)
	r.PUT("/update_discussion/:id/", discH.Update)
	r.DELETE("/delete_discussion/:id/", discH.Delete)

	// ---- Events ----
	eventH := NewEventHandler(d.DB)
	eventsG := r.Group("/events")
	eventsG.GET("/", eventH.List)
	eventsG.POST("/", eventH.Create)
	eventsG.GET("/:id/", eventH.Get)
	eventsG.PUT("/:id/", eventH.Update)
	eventsG.PATCH("/:id/", eventH.Patch)
	eventsG.DELETE("/:id/", eventH.Delete)

	// ---- Study plans, dashboard, lessons ----
	planH := NewStudyPlanHandler(d.DB, d.AI)
	r.POST("/study_plan/", planH.Generate)
	r.POST("/study-plans/save/", auth, planH.Save)
	r.PUT("/study-plans/approve/:plan_id/", auth, planH.Approve)
	r.GET("/study-plans/", auth, planH.List)

	dashH := NewDashboardHandler(d.DB)
	dashG := r.Group("/dashboard-modules")
	dashG.Use(auth)
	dashG.GET("/", dashH.List)
	dashG.GET("/available/", dashH.Available)
	dashG.POST("/create/", dashH.Create)
	dashG.POST("/toggle/:module_id/", dashH.Toggle)
	dashG.GET("/:id/", dashH.Get)
	r.GET("/modules/:module_id/study-plan/", dashH.PlanForModule)

	lessonH := NewLessonHandler(d.DB)
	lessonG := r.Group("/lessons")
	lessonG.Use(auth)
	lessonG.POST("/create/", lessonH.Create)
	lessonG.GET("/module/:module_id/", lessonH.ListByModule)
	lessonG.GET("/:id/", lessonH.Get)
	lessonG.PUT("/:id/", lessonH.Update)

	// ---- Chat logs ----
	chatH := NewStudyChatHandler(d.DB)
	chatG := r.Group("/studychatbox")
	chatG.Use(auth)
	chatG.GET("/all/", chatH.List)
	chatG.POST("/create/", chatH.Create)
	chatG.GET("/student/:student_id/", chatH.ListByStudent)
	chatG.DELETE("/delete/:id/", chatH.Delete)

	wellH := NewWellnessHandler(d.DB, d.AI)
	r.POST("/wellness/", wellH.Chat)
	r.GET("/wellness_chats/", wellH.List)
	r.POST("/wellness_create/", wellH.Create)
	r.GET("/wellness_message/:student_id/", wellH.ListByStudent)
	r.PUT("/wellness_update/:id/", wellH.Update)
	r.DELETE("/wellness_delete/:id/", wellH.Delete)

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "not found")
	})
	return r
}

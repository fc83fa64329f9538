package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mycine/api/internal/model"
	"github.com/mycine/api/internal/repository"
)

// AdminScreeningHandler serves the admin surface for cinemas and
// screenings.
type AdminScreeningHandler struct {
	Cinemas    *repository.CinemaRepo
	Movies     *repository.MovieRepo
	Screenings *repository.ScreeningRepo
}

func NewAdminScreeningHandler(cin *repository.CinemaRepo, mov *repository.MovieRepo, scr *repository.ScreeningRepo) *AdminScreeningHandler {
	return &AdminScreeningHandler{Cinemas: cin, Movies: mov, Screenings: scr}
}

type createCinemaReq struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// CreateCinema adds a venue.
func (h *AdminScreeningHandler) CreateCinema(c echo.Context) error {
	var req createCinemaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || strings.TrimSpace(req.City) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/city required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	id, err := h.Cinemas.Create(ctx, req.Name, req.Address, req.City)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

type screeningReq struct {
	CinemaID    uint64 `json:"cinema_id"`
	TMDBMovieID int64  `json:"tmdb_movie_id"`
	MovieTitle  string `json:"movie_title"`
	PosterPath  string `json:"poster_path"`
	RoomID      uint32 `json:"room_id"`
	RoomName    string `json:"room_name"`
	StartsAt    string `json:"starts_at"`
	EndsAt      string `json:"ends_at"`
	Format      string `json:"format"`
	Language    string `json:"language"`
	PriceCents  uint32 `json:"price_cents"`
	SeatRows    int    `json:"seat_rows"`
	SeatsPerRow int    `json:"seats_per_row"`
}

// defaultPriceCents is applied when a screening is created without a
// price.
const defaultPriceCents = 950

func (req *screeningReq) validate() (startsAt, endsAt time.Time, err error) {
	if req.CinemaID == 0 {
		return startsAt, endsAt, model.Validationf("cinema_id required")
	}
	if req.TMDBMovieID == 0 || strings.TrimSpace(req.MovieTitle) == "" {
		return startsAt, endsAt, model.Validationf("tmdb_movie_id and movie_title required")
	}
	startsAt, err = time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return startsAt, endsAt, model.Validationf("invalid starts_at, want RFC3339")
	}
	endsAt, err = time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		return startsAt, endsAt, model.Validationf("invalid ends_at, want RFC3339")
	}
	if !endsAt.After(startsAt) {
		return startsAt, endsAt, model.Validationf("ends_at must be after starts_at")
	}
	if req.Format == "" {
		req.Format = model.Format2D
	}
	if !model.ValidFormat(req.Format) {
		return startsAt, endsAt, model.Validationf("invalid format %q", req.Format)
	}
	if req.Language == "" {
		req.Language = model.LanguageVO
	}
	if !model.ValidLanguage(req.Language) {
		return startsAt, endsAt, model.Validationf("invalid language %q", req.Language)
	}
	if req.PriceCents == 0 {
		req.PriceCents = defaultPriceCents
	}
	return startsAt.UTC(), endsAt.UTC(), nil
}

// CreateScreening schedules a screening and generates its seat map.
// The movie row is created on first reference by TMDB id.
func (h *AdminScreeningHandler) CreateScreening(c echo.Context) error {
	var req screeningReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	startsAt, endsAt, err := req.validate()
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Cinemas.GetByID(ctx, req.CinemaID); err != nil {
		return writeError(c, err)
	}
	mov, err := h.Movies.GetOrCreateByTMDB(ctx, req.TMDBMovieID, strings.TrimSpace(req.MovieTitle), req.PosterPath)
	if err != nil {
		return writeError(c, err)
	}

	rows := model.DefaultSeatRows
	if req.SeatRows > 0 && req.SeatRows <= len(model.DefaultSeatRows) {
		rows = model.DefaultSeatRows[:req.SeatRows]
	}
	sc := &model.Screening{
		CinemaID:    req.CinemaID,
		MovieID:     mov.ID,
		TMDBMovieID: req.TMDBMovieID,
		RoomID:      req.RoomID,
		RoomName:    req.RoomName,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Format:      req.Format,
		Language:    req.Language,
		PriceCents:  req.PriceCents,
		Seats:       model.GenerateSeatMap(rows, req.SeatsPerRow),
	}
	if err := h.Screenings.Create(ctx, sc); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, sc)
}

// UpdateScreening overwrites a screening's schedule fields.  The seat
// map and live seat statuses are untouched.
func (h *AdminScreeningHandler) UpdateScreening(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req screeningReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	startsAt, endsAt, err := req.validate()
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sc, err := h.Screenings.GetScreening(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	mov, err := h.Movies.GetOrCreateByTMDB(ctx, req.TMDBMovieID, strings.TrimSpace(req.MovieTitle), req.PosterPath)
	if err != nil {
		return writeError(c, err)
	}

	sc.CinemaID = req.CinemaID
	sc.MovieID = mov.ID
	sc.TMDBMovieID = req.TMDBMovieID
	sc.RoomID = req.RoomID
	sc.RoomName = req.RoomName
	sc.StartsAt = startsAt
	sc.EndsAt = endsAt
	sc.Format = req.Format
	sc.Language = req.Language
	sc.PriceCents = req.PriceCents
	if err := h.Screenings.Update(ctx, sc); err != nil {
		return writeError(c, err)
	}
	sc.Seats = nil
	return c.JSON(http.StatusOK, sc)
}

// DeleteScreening removes a screening, refusing while non-cancelled
// bookings reference it.
func (h *AdminScreeningHandler) DeleteScreening(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Screenings.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

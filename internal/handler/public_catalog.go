package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mycine/api/internal/inventory"
	"github.com/mycine/api/internal/model"
	"github.com/mycine/api/internal/repository"
)

// CatalogHandler serves the public, unauthenticated browse surface:
// cinemas, screenings, seat maps and the snack menu.
type CatalogHandler struct {
	Cinemas    *repository.CinemaRepo
	Movies     *repository.MovieRepo
	Screenings *repository.ScreeningRepo
	Snacks     *repository.SnackRepo
	Inventory  *inventory.Engine
}

func NewCatalogHandler(cin *repository.CinemaRepo, mov *repository.MovieRepo, scr *repository.ScreeningRepo, sn *repository.SnackRepo, inv *inventory.Engine) *CatalogHandler {
	return &CatalogHandler{Cinemas: cin, Movies: mov, Screenings: scr, Snacks: sn, Inventory: inv}
}

// ListCinemas returns all cinemas, optionally filtered by ?city=.
func (h *CatalogHandler) ListCinemas(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	cinemas, err := h.Cinemas.List(ctx, c.QueryParam("city"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"cinemas": cinemas})
}

// GetCinema returns one cinema by id.
func (h *CatalogHandler) GetCinema(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	cinema, err := h.Cinemas.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cinema)
}

// screeningListItem is one row of the screening listing: the screening
// scalars plus the movie and a derived available-seat count.
type screeningListItem struct {
	*model.Screening
	Movie          *model.Movie `json:"movie,omitempty"`
	AvailableSeats int          `json:"available_seats"`
}

// ListScreenings returns screenings filtered by ?cinema_id=, ?movie_id=
// and ?date=YYYY-MM-DD, each with its movie and available-seat count.
func (h *CatalogHandler) ListScreenings(c echo.Context) error {
	var f repository.ListFilter
	if v := c.QueryParam("cinema_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cinema_id"})
		}
		f.CinemaID = id
	}
	if v := c.QueryParam("movie_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie_id"})
		}
		f.MovieID = id
	}
	if v := c.QueryParam("date"); v != "" {
		day, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
		}
		f.Day = day
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	screenings, err := h.Screenings.List(ctx, f)
	if err != nil {
		return writeError(c, err)
	}

	ids := make([]uint64, 0, len(screenings))
	for _, sc := range screenings {
		ids = append(ids, sc.ID)
	}
	counts, err := h.Screenings.CountAvailableSeats(ctx, ids)
	if err != nil {
		return writeError(c, err)
	}

	movies := make(map[uint64]*model.Movie)
	items := make([]screeningListItem, 0, len(screenings))
	for _, sc := range screenings {
		mov, ok := movies[sc.MovieID]
		if !ok {
			if m, err := h.Movies.GetByID(ctx, sc.MovieID); err == nil {
				mov = m
			}
			movies[sc.MovieID] = mov
		}
		items = append(items, screeningListItem{
			Screening:      sc,
			Movie:          mov,
			AvailableSeats: counts[sc.ID],
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"screenings": items})
}

// GetScreening returns one screening's scalars plus its movie.  The
// live seat map has its own endpoint.
func (h *CatalogHandler) GetScreening(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	sc, err := h.Screenings.GetScreening(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	sc.Seats = nil
	item := screeningListItem{Screening: sc}
	if mov, err := h.Movies.GetByID(ctx, sc.MovieID); err == nil {
		item.Movie = mov
	}
	if counts, err := h.Screenings.CountAvailableSeats(ctx, []uint64{sc.ID}); err == nil {
		item.AvailableSeats = counts[sc.ID]
	}
	return c.JSON(http.StatusOK, item)
}

// ListCinemaMovieScreenings returns the screenings of one movie at one
// cinema, the drill-down path of the browse flow.
func (h *CatalogHandler) ListCinemaMovieScreenings(c echo.Context) error {
	cinemaID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	movieID, err := pathID(c, "movieId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Cinemas.GetByID(ctx, cinemaID); err != nil {
		return writeError(c, err)
	}
	mov, err := h.Movies.GetByID(ctx, movieID)
	if err != nil {
		return writeError(c, err)
	}

	screenings, err := h.Screenings.List(ctx, repository.ListFilter{CinemaID: cinemaID, MovieID: movieID})
	if err != nil {
		return writeError(c, err)
	}
	ids := make([]uint64, 0, len(screenings))
	for _, sc := range screenings {
		ids = append(ids, sc.ID)
	}
	counts, err := h.Screenings.CountAvailableSeats(ctx, ids)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]screeningListItem, 0, len(screenings))
	for _, sc := range screenings {
		items = append(items, screeningListItem{
			Screening:      sc,
			AvailableSeats: counts[sc.ID],
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"movie": mov, "screenings": items})
}

// seatRow groups a screening's seats by row for the seat picker.
type seatRow struct {
	Row   string       `json:"row"`
	Seats []model.Seat `json:"seats"`
}

// GetSeatMap returns the live seat map of a screening grouped by row.
// Expired holds are swept first, so a seat whose hold just lapsed shows
// available rather than reserved.
func (h *CatalogHandler) GetSeatMap(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Inventory.Sweep(ctx, id); err != nil {
		return writeError(c, err)
	}
	sc, err := h.Screenings.GetScreening(ctx, id)
	if err != nil {
		return writeError(c, err)
	}

	rows := make([]seatRow, 0)
	for _, seat := range sc.Seats {
		if len(rows) == 0 || rows[len(rows)-1].Row != seat.Row {
			rows = append(rows, seatRow{Row: seat.Row})
		}
		rows[len(rows)-1].Seats = append(rows[len(rows)-1].Seats, seat)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"screening_id": sc.ID,
		"price_cents":  sc.PriceCents,
		"starts_at":    sc.StartsAt,
		"rows":         rows,
	})
}

// ListSnacks returns the in-stock snack menu.
func (h *CatalogHandler) ListSnacks(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	snacks, err := h.Snacks.List(ctx, true)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"snacks": snacks})
}

// GetSnack returns one snack by id.
func (h *CatalogHandler) GetSnack(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	s, err := h.Snacks.GetSnack(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

package db

const INSERT_GAME string = `
INSERT INTO Games (gamename)
VALUES (?)
`

const FIND_GAME_BY_NAME string = `
SELECT gameid, gamename
FROM Games
WHERE gamename=?
`

const FIND_ALL_GAMES string = `
SELECT gameid, gamename
FROM Games
ORDER BY gamename
`

const ENSURE_INFO_KEY string = `
INSERT INTO Info (infokey)
SELECT ?
WHERE NOT EXISTS (SELECT 1 FROM Info WHERE infokey=?)
`

const UPDATE_INFO_BY_KEY string = `
UPDATE Info
SET strval=?, intval=?
WHERE infokey=?
`

const UPDATE_INFO_STRVAL_BY_KEY string = `
UPDATE Info
SET strval=?
WHERE infokey=?
`

const FIND_INFO_BY_KEY string = `
SELECT strval, intval
FROM Info
WHERE infokey=?
`

const INSERT_STREAM string = `
INSERT INTO Streams (gameid, title, streamdate, state)
VALUES (?, ?, ?, ?)
`

const select_stream string = `
SELECT s.streamid, s.gameid, g.gamename, COALESCE(s.title, ''), s.streamdate, COALESCE(s.state, '')
FROM Streams s
JOIN Games g ON g.gameid = s.gameid
`

// Latest-dated scheduled stream wins, matching what the bot has always
// answered for !nextstream.
const FIND_NEXT_STREAM string = select_stream + `
WHERE s.state='SCH' AND s.streamdate IS NOT NULL
ORDER BY s.streamdate DESC
LIMIT 1
`

const FIND_SCHEDULED_STREAMS string = select_stream + `
WHERE s.state='SCH'
ORDER BY s.streamdate IS NULL, s.streamdate ASC, s.streamid ASC
`

const FIND_STREAM_BY_ID string = select_stream + `
WHERE s.streamid=?
`

const FIND_LIVE_STREAM string = select_stream + `
WHERE s.state='LIVE'
LIMIT 1
`

const UPDATE_STREAM_STATE string = `
UPDATE Streams
SET state=?
WHERE streamid=?
`

package db

// Table and column names match databases created by earlier releases of
// the bot, so an existing MadLabAssistant.db keeps working.

const games_table string = `
CREATE TABLE IF NOT EXISTS Games (
    gameid INTEGER PRIMARY KEY ASC,
    gamename TEXT,
    UNIQUE (gamename)
    )`

const streams_table string = `
CREATE TABLE IF NOT EXISTS Streams (
    streamid INTEGER PRIMARY KEY ASC,
    gameid INTEGER,
    title TEXT,
    streamdate TIMESTAMP,
    state TEXT,
    FOREIGN KEY (gameid)
    REFERENCES Games (gameid)
    )`

const info_table string = `
CREATE TABLE IF NOT EXISTS Info (
    infoid INTEGER PRIMARY KEY ASC,
    infokey TEXT,
    strval TEXT,
    intval INTEGER,
    UNIQUE (infokey)
    )`
